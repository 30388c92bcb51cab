package models

import "time"

// ManagementSchedule график ветеринарных мероприятий, рассчитанный от даты беременности.
// Не хранится в базе, пересчитывается при каждом запросе.
type ManagementSchedule struct {
	HerpesVaccine [3]time.Time `json:"herpes_vaccine"`
	P4            []time.Time  `json:"P4,omitempty"`
	BirthForecast time.Time    `json:"birth_forecast"`
}

// ForMareType возвращает вид графика для типа кобылы:
// для HEADQUARTERS контроль P4 не нужен, запись удаляется.
func (s ManagementSchedule) ForMareType(t MareType) ManagementSchedule {
	if t == MareTypeHeadquarters {
		s.P4 = nil
	}
	return s
}
