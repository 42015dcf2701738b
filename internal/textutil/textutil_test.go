package textutil

import (
	"testing"
	"time"
)

func TestShortenName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Пак Анджелика Владимировна", "Пак А.В."},
		{"Иванов Иван", "Иванов И."},
		{"Ким Виктор", "Ким В."},
		{"Абдрахманова Сауле Мухтаровна Кызы", "Абдрахманова С.М."},
		{"Мерей", "Мерей"},
		{"  Оспанова   Айгуль   Болатовна  ", "Оспанова А.Б."},
		{"", ""},
	}
	for _, c := range cases {
		if got := ShortenName(c.in); got != c.want {
			t.Errorf("ShortenName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"8 (777) 123-45-67", "+77771234567", true},
		{"87771234567", "+77771234567", true},
		{"+7 777 123 45 67", "+77771234567", true},
		{"7771234567", "+77771234567", true},
		{"нет", "", true},
		{"Нет", "", true},
		{"-", "", true},
		{"abc", "", false},
		{"", "", false},
		{"123", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizePhone(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("NormalizePhone(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestValidateDate(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		in string
		ok bool
	}{
		{"15.03.1987", true},
		{"29.02.2024", true},
		{"30.02.2024", false},
		{"15.03.1949", false},
		{"15.03.2027", false},
		{"1987-03-15", false},
		{"15.3.1987", false},
		{"", false},
	}
	for _, c := range cases {
		got, ok := ValidateDate(c.in, now)
		if ok != c.ok {
			t.Errorf("ValidateDate(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && got != c.in {
			t.Errorf("ValidateDate(%q) = %q, want input back", c.in, got)
		}
	}
}
