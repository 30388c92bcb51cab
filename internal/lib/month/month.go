// Package month содержит календарную арифметику по месяцам.
//
// В отличие от time.AddDate, который нормализует 31 января + 1 месяц в 2 (или 3) марта,
// Add прижимает день к последнему дню целевого месяца.
package month

import (
	"time"
)

// Add сдвигает t на n календарных месяцев (n может быть отрицательным).
// Если в целевом месяце меньше дней, день прижимается к последнему дню месяца.
// Время суток и часовой пояс сохраняются.
func Add(t time.Time, n int) time.Time {
	year, mon, day := t.Date()

	total := int(mon) - 1 + n
	year += total / 12
	total %= 12
	if total < 0 {
		total += 12
		year--
	}
	target := time.Month(total + 1)

	if last := DaysIn(year, target); day > last {
		day = last
	}

	hour, minute, sec := t.Clock()
	return time.Date(year, target, day, hour, minute, sec, t.Nanosecond(), t.Location())
}

// DaysIn возвращает количество дней в месяце m года year.
func DaysIn(year int, m time.Month) int {
	// нулевой день следующего месяца равен последнему дню текущего
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
