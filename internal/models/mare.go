package models

import (
	"fmt"
	"time"
)

// MareType тип кобылы в программе разведения.
type MareType string

const (
	// MareTypeReceiver кобыла-реципиент, вынашивает перенесённый эмбрион.
	MareTypeReceiver MareType = "RECEIVER"
	// MareTypeHeadquarters кобыла основного поголовья, контроль P4 не требуется.
	MareTypeHeadquarters MareType = "HEADQUARTERS"
)

// ParseMareType разбирает тип кобылы из строки.
func ParseMareType(s string) (MareType, error) {
	switch t := MareType(s); t {
	case MareTypeReceiver, MareTypeHeadquarters:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown mare type %q", ErrInvalidArgument, s)
}

// PregnancyOutcome причина снятия кобылы с учёта.
type PregnancyOutcome string

const (
	OutcomeSuccess PregnancyOutcome = "SUCCESS_PREGNANCY"
	OutcomeFail    PregnancyOutcome = "FAIL_PREGNANCY"
)

// ParsePregnancyOutcome разбирает исход беременности из строки.
func ParsePregnancyOutcome(s string) (PregnancyOutcome, error) {
	switch o := PregnancyOutcome(s); o {
	case OutcomeSuccess, OutcomeFail:
		return o, nil
	}
	return "", fmt.Errorf("%w: unknown pregnancy outcome %q", ErrInvalidArgument, s)
}

// Mare представляет кобылу, зарегистрированную владельцем.
// Имя кобылы уникально в пределах одного владельца.
type Mare struct {
	ID              int       `json:"id" db:"id"`
	Name            string    `json:"mare_name" db:"mare_name"`
	Type            MareType  `json:"mare_type" db:"mare_type"`
	StallionName    string    `json:"stallion_name" db:"stallion_name"`
	DonorName       *string   `json:"donor_name,omitempty" db:"donor_name"`
	PregnancyDate   time.Time `json:"pregnancy_date" db:"pregnancy_date"`
	ActivePregnancy bool      `json:"active_pregnancy" db:"active_pregnancy"`
	OwnerUID        string    `json:"-" db:"owner_uid"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// DummyMare используется для приёма данных кобылы из JSON-запроса.
// Дата беременности передаётся в формате RFC 3339.
type DummyMare struct {
	Name          string    `json:"mare_name" validate:"required,max=128"`
	Type          MareType  `json:"mare_type" validate:"required,oneof=RECEIVER HEADQUARTERS"`
	StallionName  string    `json:"stallion_name" validate:"required,max=128"`
	DonorName     *string   `json:"donor_name,omitempty" validate:"omitempty,max=128"`
	PregnancyDate time.Time `json:"pregnancy_date" validate:"required"`
}

// MarePatch частичное обновление кобылы: nil-поле означает «не менять».
type MarePatch struct {
	Name            *string    `json:"mare_name,omitempty" validate:"omitempty,min=1,max=128"`
	Type            *MareType  `json:"mare_type,omitempty" validate:"omitempty,oneof=RECEIVER HEADQUARTERS"`
	StallionName    *string    `json:"stallion_name,omitempty" validate:"omitempty,min=1,max=128"`
	DonorName       *string    `json:"donor_name,omitempty" validate:"omitempty,max=128"`
	PregnancyDate   *time.Time `json:"pregnancy_date,omitempty"`
	ActivePregnancy *bool      `json:"active_pregnancy,omitempty"`
}

// Apply возвращает копию m с применёнными полями патча.
func (p MarePatch) Apply(m Mare) Mare {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Type != nil {
		m.Type = *p.Type
	}
	if p.StallionName != nil {
		m.StallionName = *p.StallionName
	}
	if p.DonorName != nil {
		donor := *p.DonorName
		m.DonorName = &donor
	}
	if p.PregnancyDate != nil {
		m.PregnancyDate = *p.PregnancyDate
	}
	if p.ActivePregnancy != nil {
		m.ActivePregnancy = *p.ActivePregnancy
	}
	return m
}

// Empty сообщает, что патч ничего не меняет.
func (p MarePatch) Empty() bool {
	return p == MarePatch{}
}

// MareWithSchedule кобыла вместе с рассчитанным графиком мероприятий.
type MareWithSchedule struct {
	Mare     Mare               `json:"mare"`
	Schedule ManagementSchedule `json:"management_schedule"`
}
