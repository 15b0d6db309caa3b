package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jsamit27/ava/internal/core/domain"
)

// OrderTables сортирует таблицы так, что родители идут раньше детей.
// Внутри одного уровня порядок по имени, цикл зависимостей - ошибка.
func OrderTables(tables []domain.TableSpec) ([]domain.TableSpec, error) {
	byName := make(map[string]domain.TableSpec, len(tables))
	for _, t := range tables {
		if _, dup := byName[t.Name]; dup {
			return nil, fmt.Errorf("table %s is declared twice", t.Name)
		}
		byName[t.Name] = t
	}

	indegree := make(map[string]int, len(tables))
	children := make(map[string][]string, len(tables))
	for _, t := range tables {
		indegree[t.Name] += 0
		for _, dep := range t.DependsOn {
			if _, ok := byName[dep]; !ok {
				return nil, fmt.Errorf("%w: %s -> %s", domain.ErrUnknownDependency, t.Name, dep)
			}
			if dep == t.Name {
				continue
			}
			indegree[t.Name]++
			children[dep] = append(children[dep], t.Name)
		}
	}

	var level []string
	for name, d := range indegree {
		if d == 0 {
			level = append(level, name)
		}
	}

	ordered := make([]domain.TableSpec, 0, len(tables))
	for len(level) > 0 {
		sort.Strings(level)
		var next []string
		for _, name := range level {
			ordered = append(ordered, byName[name])
			for _, child := range children[name] {
				indegree[child]--
				if indegree[child] == 0 {
					next = append(next, child)
				}
			}
		}
		level = next
	}

	if len(ordered) != len(tables) {
		var stuck []string
		for name, d := range indegree {
			if d > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("%w: %s", domain.ErrDependencyCycle, strings.Join(stuck, ", "))
	}
	return ordered, nil
}

func reversed(tables []domain.TableSpec) []domain.TableSpec {
	out := make([]domain.TableSpec, len(tables))
	for i, t := range tables {
		out[len(tables)-1-i] = t
	}
	return out
}
