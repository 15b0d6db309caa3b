package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/jsamit27/ava/internal/core/domain"
)

// argInt64 приводит аргумент модели к целому. Дробные значения не принимаются.
func argInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	}
	return 0, false
}

func argText(v interface{}) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", false
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	default:
		return fmt.Sprint(s), true
	}
}

// argProvided аргумент есть и не пустой после обрезки
func argProvided(args map[string]interface{}, key string) bool {
	v, ok := args[key]
	if !ok || v == nil {
		return false
	}
	s, _ := argText(v)
	return strings.TrimSpace(s) != ""
}

// withoutNil копия аргументов без пустых значений
func withoutNil(args map[string]interface{}, skip ...string) map[string]interface{} {
	out := make(map[string]interface{}, len(args))
	for k, v := range args {
		if v == nil {
			continue
		}
		skipped := false
		for _, s := range skip {
			if k == s {
				skipped = true
				break
			}
		}
		if !skipped {
			out[k] = v
		}
	}
	return out
}

func sortedColumns(allowed map[string]domain.ColumnKind) []string {
	cols := make([]string, 0, len(allowed))
	for c := range allowed {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// buildPatch оставляет разрешенные колонки и приводит значения к их типам.
// Вторым значением возвращается готовый ответ об ошибке ввода.
func buildPatch(args map[string]interface{}, allowed map[string]domain.ColumnKind) (domain.FieldPatch, *domain.ToolResult) {
	patch := domain.FieldPatch{}
	for _, col := range sortedColumns(allowed) {
		raw, ok := args[col]
		if !ok || raw == nil {
			continue
		}
		switch allowed[col] {
		case domain.ColumnInteger:
			n, ok := argInt64(raw)
			if !ok {
				res := domain.ToolFailure(domain.CodeInvalidInput, fmt.Sprintf("%s must be an integer.", col),
					map[string]interface{}{"received": raw})
				return nil, &res
			}
			patch[col] = n
		default:
			s, _ := argText(raw)
			patch[col] = s
		}
	}
	return patch, nil
}

// storageFailure переводит ошибку хранилища в ответ инструмента
func storageFailure(err error, verb string) domain.ToolResult {
	switch {
	case errors.Is(err, domain.ErrDBUnavailable):
		return domain.ToolFailure(domain.CodeDBUnavailable, fmt.Sprintf("Could not open database: %v", err), nil)
	case errors.Is(err, domain.ErrIntegrity):
		return domain.ToolFailure(domain.CodePreconditionFailed, fmt.Sprintf("Integrity error: %v", err), nil)
	}
	return domain.ToolFailure(domain.CodeTxnFailed, fmt.Sprintf("%s failed: %v", verb, err), nil)
}
