package builder

import (
	"testing"
	"time"
)

func TestSQLBuilder(t *testing.T) {
	t.Run("Select", func(t *testing.T) {
		b := NewSQLBuilder()
		query, args := b.Select("id", "name").From("instances").Where("id = ?", 1).Build()
		expected := "SELECT id, name FROM instances WHERE id = $1"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 1 || args[0] != 1 {
			t.Errorf("expected args [1], got %v", args)
		}
	})

	t.Run("Multiple Where conditions", func(t *testing.T) {
		testTime := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		b := NewSQLBuilder()
		query, args := b.Select("id", "name", "state").
			From("instances").
			Where("state = ?", "running").
			Where("launched_at > ?", testTime).
			Build()

		expected := "SELECT id, name, state FROM instances WHERE state = $1 AND launched_at > $2"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 2 || args[0] != "running" || args[1] != testTime {
			t.Errorf("expected args [running %v], got %v", testTime, args)
		}
	})

	t.Run("Join", func(t *testing.T) {
		b := NewSQLBuilder()
		query, _ := b.Select("v.id", "v.size", "i.name").
			From("volumes v").
			Join("INNER", "instances i", "v.instance_id = i.id").
			Build()

		expected := "SELECT v.id, v.size, i.name FROM volumes v INNER JOIN instances i ON v.instance_id = i.id"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
	})

	t.Run("OrderBy Limit Offset", func(t *testing.T) {
		b := NewSQLBuilder()
		query, _ := b.Select("id").
			From("instances").
			OrderBy("name").
			Limit(10).
			Offset(20).
			Build()

		expected := "SELECT id FROM instances ORDER BY name LIMIT 10 OFFSET 20"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
	})
}

func TestSQLBuilderBuildSafe(t *testing.T) {
	t.Run("matching placeholders", func(t *testing.T) {
		b := NewSQLBuilder()
		_, _, err := b.Select("id").From("instances").Where("state = ?", "running").BuildSafe()
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("placeholder mismatch", func(t *testing.T) {
		b := NewSQLBuilder()
		_, _, err := b.Select("id").From("instances").Where("state = ? AND zone = ?", "running").BuildSafe()
		if err == nil {
			t.Error("expected placeholder mismatch error")
		}
	})
}
