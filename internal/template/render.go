// Пакет template подставляет значения в плейсхолдеры вида {{имя}}.
package template

import "strings"

// Render заменяет каждое вхождение известного плейсхолдера {{имя}} на значение
// из values. Нераспознанные плейсхолдеры остаются в тексте без изменений.
// Функция чистая: повторный рендеринг текста без плейсхолдеров возвращает его как есть.
func Render(body string, values map[string]string) string {
	if body == "" || len(values) == 0 {
		return body
	}

	pairs := make([]string, 0, len(values)*2)
	for name, value := range values {
		pairs = append(pairs, "{{"+name+"}}", value)
	}

	return strings.NewReplacer(pairs...).Replace(body)
}
