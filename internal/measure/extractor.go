package measure

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"paintquote_backend/internal/models"
)

// RoomMeasurement - одна извлеченная комната. Иммутабельна после
// извлечения; повторный анализ заменяет набор целиком.
type RoomMeasurement struct {
	ID                int // 1-based, порядок первого появления
	Name              string
	RoomType          string
	WallSurfaceM2     float64
	CeilingAreaM2     float64
	WallTreatments    models.TreatmentSelection
	CeilingTreatments models.TreatmentSelection
}

// Vision-модель просят отвечать строго в формате:
//
//	Room: <name> (<type>)
//	- walls_surface_m2: <number>
//	- area_m2: <number>
//
// но доверять этому нельзя: модель добавляет комментарии, дублирует
// комнаты, пропускает строки и гуляет по регистру. Извлечение идет
// двумя проходами: строгий основной и мягкий запасной, который
// включается только если основной не нашел ни одной комнаты.
var (
	headerRe         = regexp.MustCompile(`(?i)^\s*room:\s*(.+?)\s*\(([^)]*)\)\s*$`)
	fallbackHeaderRe = regexp.MustCompile(`(?i)^\s*#{0,3}\s*room:\s*(.+?)\s*\(([^)]*)\)`)
	wallsRe          = regexp.MustCompile(`(?i)walls_surface_m2\s*:\s*(-?[0-9]+(?:[.,][0-9]+)?)`)
	areaRe           = regexp.MustCompile(`(?i)\barea_m2\s*:\s*(-?[0-9]+(?:[.,][0-9]+)?)`)
)

// Сколько строк после заголовка просматривает запасной проход
const fallbackLookahead = 10

type block struct {
	name     string
	roomType string
	walls    float64
	ceiling  float64
}

// Extract превращает сырой текст vision-модели в валидированный список
// комнат. Никогда не возвращает ошибку: худший случай - пустой список,
// и решение "данных нет" принимает вызывающий.
func Extract(text string) []RoomMeasurement {
	rooms, _ := Parse(text)
	return rooms
}

// Parse - то же, что Extract, но дополнительно сообщает, пришлось ли
// включать запасной проход (сигнал деградации формата ответа модели)
func Parse(text string) ([]RoomMeasurement, bool) {
	rooms := finalize(primaryPass(text))
	if len(rooms) > 0 {
		return rooms, false
	}
	// Запасной проход только при полном провале основного,
	// иначе дубликаты вернулись бы обратно
	return finalize(fallbackPass(text)), true
}

// primaryPass - строгий построчный конечный автомат: заголовок комнаты
// открывает блок, строки значений заполняют его (последнее значение
// выигрывает), следующий заголовок или конец текста закрывает.
func primaryPass(text string) []block {
	var blocks []block
	var current *block

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := scanner.Text()

		if m := headerRe.FindStringSubmatch(line); m != nil {
			if current != nil {
				blocks = append(blocks, *current)
			}
			current = &block{name: strings.TrimSpace(m[1]), roomType: strings.TrimSpace(m[2])}
			continue
		}

		if current == nil {
			continue
		}

		if m := wallsRe.FindStringSubmatch(line); m != nil {
			current.walls = parseArea(m[1])
		}
		if m := areaRe.FindStringSubmatch(line); m != nil {
			current.ceiling = parseArea(m[1])
		}
	}

	if current != nil {
		blocks = append(blocks, *current)
	}
	return blocks
}

// fallbackPass - мягкий проход для ответов, где модель завернула
// заголовки в markdown. Для каждого заголовка просматривает до
// fallbackLookahead последующих строк, останавливаясь на следующем
// заголовке.
func fallbackPass(text string) []block {
	var blocks []block

	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	for i := 0; i < len(lines); i++ {
		m := fallbackHeaderRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}

		b := block{name: strings.TrimSpace(m[1]), roomType: strings.TrimSpace(m[2])}
		for j := i + 1; j < len(lines) && j <= i+fallbackLookahead; j++ {
			if fallbackHeaderRe.MatchString(lines[j]) {
				break
			}
			if vm := wallsRe.FindStringSubmatch(lines[j]); vm != nil {
				b.walls = parseArea(vm[1])
			}
			if vm := areaRe.FindStringSubmatch(lines[j]); vm != nil {
				b.ceiling = parseArea(vm[1])
			}
		}
		blocks = append(blocks, b)
	}

	return blocks
}

// finalize отбрасывает мусорные блоки, дедуплицирует по точному имени
// (первое вхождение выигрывает, повтор отбрасывается целиком, не
// сливается) и присваивает последовательные идентификаторы.
func finalize(blocks []block) []RoomMeasurement {
	var rooms []RoomMeasurement
	seen := make(map[string]bool)

	for _, b := range blocks {
		// Пустое имя или оба нулевых значения - это комментарий
		// или малформированный регион, а не комната
		if b.name == "" {
			continue
		}
		if b.walls == 0 && b.ceiling == 0 {
			continue
		}
		if seen[b.name] {
			continue
		}
		seen[b.name] = true

		rooms = append(rooms, RoomMeasurement{
			ID:            len(rooms) + 1,
			Name:          b.name,
			RoomType:      b.roomType,
			WallSurfaceM2: b.walls,
			CeilingAreaM2: b.ceiling,
		})
	}

	return rooms
}

// parseArea превращает текст в неотрицательную площадь.
// Отрицательные и нечисловые значения дают 0, не ошибку.
func parseArea(s string) float64 {
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
