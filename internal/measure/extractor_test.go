package measure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_WellFormedResponse(t *testing.T) {
	t.Parallel()

	text := `Here are the rooms I identified on the floor plan:

Room: Entree (entrance)
- walls_surface_m2: 17.93
- area_m2: 7.78

Room: Woonkamer (living room)
- walls_surface_m2: 51.19
- area_m2: 48.29

Let me know if you need anything else.`

	rooms := Extract(text)
	require.Len(t, rooms, 2)

	assert.Equal(t, 1, rooms[0].ID)
	assert.Equal(t, "Entree", rooms[0].Name)
	assert.Equal(t, "entrance", rooms[0].RoomType)
	assert.Equal(t, 17.93, rooms[0].WallSurfaceM2)
	assert.Equal(t, 7.78, rooms[0].CeilingAreaM2)

	assert.Equal(t, 2, rooms[1].ID)
	assert.Equal(t, "Woonkamer", rooms[1].Name)
	assert.Equal(t, "living room", rooms[1].RoomType)
	assert.Equal(t, 51.19, rooms[1].WallSurfaceM2)
	assert.Equal(t, 48.29, rooms[1].CeilingAreaM2)
}

func TestExtract_NoRoomLines(t *testing.T) {
	t.Parallel()

	rooms := Extract("I could not identify any rooms on this floor plan, the image is too blurry.")
	assert.Empty(t, rooms)

	assert.Empty(t, Extract(""))
}

func TestExtract_DuplicateNameDropped(t *testing.T) {
	t.Parallel()

	text := `Room: Keuken (kitchen)
- walls_surface_m2: 20.00
- area_m2: 9.50

Room: Keuken (kitchen)
- walls_surface_m2: 99.00
- area_m2: 99.00`

	rooms := Extract(text)
	require.Len(t, rooms, 1)
	// Первое вхождение выигрывает, повтор не сливается
	assert.Equal(t, 20.00, rooms[0].WallSurfaceM2)
	assert.Equal(t, 9.50, rooms[0].CeilingAreaM2)
}

func TestExtract_LastValueWinsWithinBlock(t *testing.T) {
	t.Parallel()

	text := `Room: Slaapkamer (bedroom)
- walls_surface_m2: 10.00
- walls_surface_m2: 31.40
- area_m2: 12.25`

	rooms := Extract(text)
	require.Len(t, rooms, 1)
	assert.Equal(t, 31.40, rooms[0].WallSurfaceM2)
}

func TestExtract_NegativeValueStoredAsZero(t *testing.T) {
	t.Parallel()

	text := `Room: Badkamer (bathroom)
- walls_surface_m2: -5
- area_m2: 6.10`

	rooms := Extract(text)
	require.Len(t, rooms, 1)
	assert.Equal(t, 0.0, rooms[0].WallSurfaceM2)
	assert.Equal(t, 6.10, rooms[0].CeilingAreaM2)
}

func TestExtract_BothZeroDiscarded(t *testing.T) {
	t.Parallel()

	text := `Room: Gang (hallway)
- walls_surface_m2: 0
- area_m2: 0

Room: Woonkamer (living room)
- walls_surface_m2: 51.19
- area_m2: 48.29`

	rooms := Extract(text)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Woonkamer", rooms[0].Name)
	assert.Equal(t, 1, rooms[0].ID)
}

func TestExtract_ValueOnlyBlockDiscarded(t *testing.T) {
	t.Parallel()

	// Строки значений до первого заголовка игнорируются
	text := `- walls_surface_m2: 14.00
- area_m2: 7.00

Room: Entree (entrance)
- walls_surface_m2: 17.93
- area_m2: 7.78`

	rooms := Extract(text)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Entree", rooms[0].Name)
}

func TestExtract_MissingValueDefaultsToZero(t *testing.T) {
	t.Parallel()

	text := `Room: Toilet (toilet)
- walls_surface_m2: 8.40`

	rooms := Extract(text)
	require.Len(t, rooms, 1)
	assert.Equal(t, 8.40, rooms[0].WallSurfaceM2)
	assert.Equal(t, 0.0, rooms[0].CeilingAreaM2)
}

func TestExtract_FallbackMarkdownHeaders(t *testing.T) {
	t.Parallel()

	// Основной проход не находит ничего из-за markdown-префикса,
	// запасной подхватывает
	text := `## Room: Entree (entrance)
Some narration from the model.
- walls_surface_m2: 17.93
- area_m2: 7.78

## Room: Woonkamer (living room)
- walls_surface_m2: 51.19
- area_m2: 48.29`

	rooms := Extract(text)
	require.Len(t, rooms, 2)
	assert.Equal(t, "Entree", rooms[0].Name)
	assert.Equal(t, "Woonkamer", rooms[1].Name)
	assert.Equal(t, 51.19, rooms[1].WallSurfaceM2)
}

func TestExtract_FallbackNotUsedWhenPrimarySucceeds(t *testing.T) {
	t.Parallel()

	// Одна строгая комната есть - значит, markdown-вариант того же
	// ответа не должен добавиться вторым проходом
	text := `Room: Entree (entrance)
- walls_surface_m2: 17.93
- area_m2: 7.78

## Room: Zolder (attic)
- walls_surface_m2: 22.00
- area_m2: 18.00`

	rooms := Extract(text)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Entree", rooms[0].Name)
}

func TestExtract_FallbackLookaheadBounded(t *testing.T) {
	t.Parallel()

	text := "## Room: Kelder (basement)\n" +
		"line\nline\nline\nline\nline\nline\nline\nline\nline\nline\n" +
		"- walls_surface_m2: 30.00\n- area_m2: 25.00\n"

	// Значения за пределами окна просмотра не попадают в блок,
	// блок остается нулевым и отбрасывается
	assert.Empty(t, Extract(text))
}

func TestExtract_CaseInsensitiveKeywords(t *testing.T) {
	t.Parallel()

	text := `room: Entree (entrance)
- WALLS_SURFACE_M2: 17.93
- Area_m2: 7.78`

	rooms := Extract(text)
	require.Len(t, rooms, 1)
	assert.Equal(t, 17.93, rooms[0].WallSurfaceM2)
	assert.Equal(t, 7.78, rooms[0].CeilingAreaM2)
}

func TestParse_ReportsFallbackUse(t *testing.T) {
	t.Parallel()

	strict := "Room: Entree (entrance)\n- walls_surface_m2: 17.93\n- area_m2: 7.78"
	_, usedFallback := Parse(strict)
	assert.False(t, usedFallback)

	markdown := "## Room: Entree (entrance)\n- walls_surface_m2: 17.93\n- area_m2: 7.78"
	rooms, usedFallback := Parse(markdown)
	require.Len(t, rooms, 1)
	assert.True(t, usedFallback)
}

func TestExtract_NonNumericValueIgnored(t *testing.T) {
	t.Parallel()

	text := `Room: Berging (storage)
- walls_surface_m2: unknown
- area_m2: 4.20`

	rooms := Extract(text)
	require.Len(t, rooms, 1)
	assert.Equal(t, 0.0, rooms[0].WallSurfaceM2)
	assert.Equal(t, 4.20, rooms[0].CeilingAreaM2)
}
