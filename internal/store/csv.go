package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ImportCSV loads catalog rows from a CSV export. The header row names the
// columns; recipe_id and title are required, everything else is optional and
// blank numeric cells import as NULL. Returns the number of rows imported.
func (s *SQLiteStore) ImportCSV(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("reading csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"recipe_id", "title"} {
		if _, ok := col[required]; !ok {
			return 0, fmt.Errorf("csv missing %q column", required)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO recipes (`+recipeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	line := 1
	imported := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("reading csv line %d: %w", line, err)
		}

		cell := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		num := func(name string) (*float64, error) {
			raw := cell(name)
			if raw == "" {
				return nil, nil
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad %s %q", line, name, raw)
			}
			return &v, nil
		}

		rec := Recipe{
			RecipeID: cell("recipe_id"),
			Title:    cell("title"),
			Tags:     cell("tags"),
			Serves:   cell("serves"),
		}
		if rec.RecipeID == "" || rec.Title == "" {
			return imported, fmt.Errorf("line %d: empty recipe_id or title", line)
		}
		fields := []struct {
			name string
			dst  **float64
		}{
			{"average_rating", &rec.AverageRating},
			{"calories", &rec.Calories},
			{"protein_g", &rec.ProteinG},
			{"sodium_mg", &rec.SodiumMg},
			{"carbs_g", &rec.CarbsG},
			{"sugars_g", &rec.SugarsG},
			{"total_fat_g", &rec.TotalFatG},
			{"saturated_fat_g", &rec.SaturatedFatG},
			{"duration_min", &rec.DurationMin},
		}
		for _, fld := range fields {
			v, err := num(fld.name)
			if err != nil {
				return imported, err
			}
			*fld.dst = v
		}

		if _, err := stmt.ExecContext(ctx,
			rec.RecipeID, rec.Title, rec.Tags, rec.Serves, rec.AverageRating,
			rec.Calories, rec.ProteinG, rec.SodiumMg, rec.CarbsG, rec.SugarsG,
			rec.TotalFatG, rec.SaturatedFatG, rec.DurationMin); err != nil {
			return imported, fmt.Errorf("inserting line %d: %w", line, err)
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return imported, fmt.Errorf("committing import: %w", err)
	}
	return imported, nil
}
