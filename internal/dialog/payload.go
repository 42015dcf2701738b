package dialog

import (
	"encoding/json"
	"strconv"
)

// Payload хранится в БД как JSON, поэтому после чтения числа приходят
// как float64, а вложенные структуры — как map[string]any. Геттеры ниже
// прячут эти преобразования от хендлеров.

func GetString(p Payload, key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func GetInt64(p Payload, key string) (int64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}

func GetInt64Slice(p Payload, key string) []int64 {
	v, ok := p[key]
	if !ok {
		return nil
	}
	switch arr := v.(type) {
	case []int64:
		return arr
	case []any:
		out := make([]int64, 0, len(arr))
		for _, e := range arr {
			switch n := e.(type) {
			case int64:
				out = append(out, n)
			case float64:
				out = append(out, int64(n))
			}
		}
		return out
	}
	return nil
}

func GetStringSlice(p Payload, key string) []string {
	v, ok := p[key]
	if !ok {
		return nil
	}
	switch arr := v.(type) {
	case []string:
		return arr
	case []any:
		out := make([]string, 0, len(arr))
		for _, e := range arr {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

/* Память кнопок: (callback key) -> подпись, чтобы на следующих шагах
   показывать человекочитаемые названия без повторного похода в БД. */

func SaveButton(p Payload, key, text string) {
	m := buttonMap(p)
	m[key] = text
	p["buttons"] = m
}

// ButtonName возвращает подпись кнопки; ok=false после сброса сессии —
// вызывающий код подставляет заглушку с id, это не ошибка.
func ButtonName(p Payload, key string) (string, bool) {
	m := buttonMap(p)
	s, ok := m[key]
	return s, ok
}

func buttonMap(p Payload) map[string]string {
	switch m := p["buttons"].(type) {
	case map[string]string:
		return m
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, v := range m {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
		return out
	}
	return map[string]string{}
}

/* Структурные значения (очередь количеств и т.п.) кладём одним полем
   и перегоняем через JSON при чтении. */

func getStruct(p Payload, key string, dst any) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return false
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}
