package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/huandu/go-sqlbuilder"
	"github.com/samber/lo"

	"github.com/mensahub/mensahub/app/mensa"
)

// MealRepository handles database operations for meal rows, including the
// reconciliation steps that keep volatile categories consistent.
type MealRepository struct {
	db *DB
}

func NewMealRepository(db *DB) *MealRepository {
	return &MealRepository{db: db}
}

// UpsertMeals merges one ingestion batch (mixed venues/dates allowed) into the
// store. Cleanup of volatile categories runs before the general upsert because
// it is keyed on matching against this batch's meals; empty-row cleanup runs
// before the upsert so a stored row that became empty is deleted, never
// overwritten with blanks. Replaying an identical batch is a no-op in effect.
func (r *MealRepository) UpsertMeals(meals []mensa.Meal) error {
	if len(meals) == 0 {
		return nil
	}

	if err := r.cleanupVegetableBar(meals); err != nil {
		return err
	}

	if err := r.cleanupPastaBar(meals); err != nil {
		return err
	}

	emptyMeals, validMeals := lo.FilterReject(meals, func(m mensa.Meal, _ int) bool {
		return m.IsEmpty()
	})

	if err := r.cleanupEmptyMeals(emptyMeals); err != nil {
		return err
	}

	// When an external_id appears both empty and valid in one batch the
	// valid copy wins: only stored rows that are themselves empty were
	// deleted above, and the valid copy is upserted here.
	for _, meal := range validMeals {
		if err := r.upsertMeal(meal); err != nil {
			return err
		}
	}

	return nil
}

// cleanupVegetableBar deletes stored vegetable-bar rows that are not the fixed
// placeholder. Covers batches ingested before the category was collapsed, and
// feed drift that stored individual items.
func (r *MealRepository) cleanupVegetableBar(meals []mensa.Meal) error {
	venueMeals := lo.Filter(meals, func(m mensa.Meal, _ int) bool {
		return mensa.IsVegetableBarVenue(m.Location)
	})

	groups := lo.GroupBy(venueMeals, func(m mensa.Meal) string {
		return m.Location + "\x00" + m.Date
	})

	for _, group := range groups {
		location, date := group[0].Location, group[0].Date

		stored, err := r.getMealsAt(location, date)
		if err != nil {
			return err
		}

		placeholderID := mensa.VegetableBarExternalID(location, date)
		var stale []int64
		for _, row := range stored {
			if mensa.IsVegetableBarCategory(row.Location, row.Category) && row.ExternalID != placeholderID {
				stale = append(stale, row.ID)
			}
		}

		if err := r.deleteMealsByID(stale); err != nil {
			return err
		}
	}

	return nil
}

// cleanupPastaBar deletes stored pasta-bar rows whose external_id is not in
// the freshly fetched set for that venue+date. The pasta bar rotates daily, so
// a missing id means the item is no longer offered.
func (r *MealRepository) cleanupPastaBar(meals []mensa.Meal) error {
	pastaMeals := lo.Filter(meals, func(m mensa.Meal, _ int) bool {
		return mensa.IsPastaBarCategory(m.Category)
	})

	groups := lo.GroupBy(pastaMeals, func(m mensa.Meal) string {
		return m.Location + "\x00" + m.Date
	})

	for _, group := range groups {
		location, date := group[0].Location, group[0].Date

		fresh := make(map[string]bool, len(group))
		for _, m := range group {
			fresh[m.ExternalID] = true
		}

		stored, err := r.getMealsAt(location, date)
		if err != nil {
			return err
		}

		var stale []int64
		for _, row := range stored {
			if mensa.IsPastaBarCategory(row.Category) && !fresh[row.ExternalID] {
				stale = append(stale, row.ID)
			}
		}

		if err := r.deleteMealsByID(stale); err != nil {
			return err
		}
	}

	return nil
}

// cleanupEmptyMeals prunes stale rows at the venue+dates where this batch
// produced empty meals: stored rows that are empty themselves, and stored rows
// whose external_id the batch now reports as empty. The latter catches a row
// that was valid in a prior ingestion (a price-only item shares the blank-name
// id) and became empty; it is deleted rather than kept. The upsert of valid
// meals runs afterwards, so an id that is both empty and valid in one batch
// ends up with the valid copy.
func (r *MealRepository) cleanupEmptyMeals(emptyMeals []mensa.Meal) error {
	groups := lo.GroupBy(emptyMeals, func(m mensa.Meal) string {
		return m.Location + "\x00" + m.Date
	})

	for _, group := range groups {
		location, date := group[0].Location, group[0].Date

		emptyIDs := make(map[string]bool, len(group))
		for _, m := range group {
			emptyIDs[m.ExternalID] = true
		}

		stored, err := r.getMealsAt(location, date)
		if err != nil {
			return err
		}

		var stale []int64
		for _, row := range stored {
			if rowIsEmpty(row) || emptyIDs[row.ExternalID] {
				stale = append(stale, row.ID)
			}
		}

		if err := r.deleteMealsByID(stale); err != nil {
			return err
		}
	}

	return nil
}

func rowIsEmpty(m Meal) bool {
	return strings.TrimSpace(m.Name) == "" &&
		strings.TrimSpace(m.Notes) == "" &&
		strings.TrimSpace(m.PriceStudent) == "" &&
		strings.TrimSpace(m.PriceEmployee) == "" &&
		strings.TrimSpace(m.PriceOther) == ""
}

func (r *MealRepository) upsertMeal(meal mensa.Meal) error {
	_, err := r.db.Exec(`
		INSERT INTO meals (
			external_id, name, category, date, location,
			price_student, price_employee, price_other, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			date = excluded.date,
			location = excluded.location,
			price_student = excluded.price_student,
			price_employee = excluded.price_employee,
			price_other = excluded.price_other,
			notes = excluded.notes,
			updated_at = CURRENT_TIMESTAMP
	`, meal.ExternalID, meal.Name, meal.Category, meal.Date, meal.Location,
		meal.PriceStudent, meal.PriceEmployee, meal.PriceOther, meal.Notes)

	if err != nil {
		return fmt.Errorf("failed to upsert meal %s: %w", meal.ExternalID, err)
	}

	return nil
}

func (r *MealRepository) deleteMealsByID(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	b := sqlbuilder.NewDeleteBuilder()
	b.DeleteFrom("meals").Where(b.In("id", lo.ToAnySlice(ids)...))
	query, args := b.Build()

	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to delete stale meals: %w", err)
	}

	return nil
}

func (r *MealRepository) getMealsAt(location, date string) ([]Meal, error) {
	rows, err := r.db.Query(`
		SELECT id, external_id, name, category, date, location,
		       price_student, price_employee, price_other, notes
		FROM meals
		WHERE location = ? AND date = ?
	`, location, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get meals for %s/%s: %w", location, date, err)
	}
	defer rows.Close()

	var meals []Meal
	for rows.Next() {
		var meal Meal
		err := rows.Scan(
			&meal.ID, &meal.ExternalID, &meal.Name, &meal.Category,
			&meal.Date, &meal.Location, &meal.PriceStudent,
			&meal.PriceEmployee, &meal.PriceOther, &meal.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal row: %w", err)
		}
		meals = append(meals, meal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating meal rows: %w", err)
	}

	return meals, nil
}

// GetMealsForDate returns the stored meals for one venue and date.
func (r *MealRepository) GetMealsForDate(location, date string) ([]Meal, error) {
	return r.getMealsAt(location, date)
}

// GetMealsWithStats returns the meals for one venue and date joined with
// their community counters.
func (r *MealRepository) GetMealsWithStats(location, date string) ([]MealWithStats, error) {
	rows, err := r.db.Query(`
		SELECT m.id, m.external_id, m.name, m.category, m.date, m.location,
		       m.price_student, m.price_employee, m.price_other, m.notes,
		       COALESCE((SELECT SUM(value) FROM votes WHERE meal_id = m.id), 0),
		       (SELECT COUNT(*) FROM votes WHERE meal_id = m.id AND value = 1),
		       (SELECT COUNT(*) FROM votes WHERE meal_id = m.id AND value = -1),
		       (SELECT COUNT(*) FROM comments WHERE meal_id = m.id AND hidden = 0),
		       (SELECT COUNT(*) FROM photos WHERE meal_id = m.id AND approved = 1),
		       (SELECT COUNT(*) FROM size_reports WHERE meal_id = m.id AND size = 'too_small'),
		       (SELECT COUNT(*) FROM size_reports WHERE meal_id = m.id AND size = 'just_right'),
		       (SELECT COUNT(*) FROM size_reports WHERE meal_id = m.id AND size = 'too_big')
		FROM meals m
		WHERE m.location = ? AND m.date = ?
		ORDER BY m.category, m.name
	`, location, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get meals with stats: %w", err)
	}
	defer rows.Close()

	var meals []MealWithStats
	for rows.Next() {
		var meal MealWithStats
		err := rows.Scan(
			&meal.ID, &meal.ExternalID, &meal.Name, &meal.Category,
			&meal.Date, &meal.Location, &meal.PriceStudent,
			&meal.PriceEmployee, &meal.PriceOther, &meal.Notes,
			&meal.Score, &meal.UpVotes, &meal.DownVotes,
			&meal.CommentCount, &meal.PhotoCount,
			&meal.Sizes.TooSmall, &meal.Sizes.JustRight, &meal.Sizes.TooBig,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal stats row: %w", err)
		}
		meals = append(meals, meal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating meal stats rows: %w", err)
	}

	return meals, nil
}

// GetMealByID retrieves one meal by its database id.
func (r *MealRepository) GetMealByID(id int64) (*Meal, error) {
	var meal Meal
	err := r.db.QueryRow(`
		SELECT id, external_id, name, category, date, location,
		       price_student, price_employee, price_other, notes
		FROM meals
		WHERE id = ?
	`, id).Scan(
		&meal.ID, &meal.ExternalID, &meal.Name, &meal.Category,
		&meal.Date, &meal.Location, &meal.PriceStudent,
		&meal.PriceEmployee, &meal.PriceOther, &meal.Notes,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meal by id: %w", err)
	}

	return &meal, nil
}

// HasMealsForDate reports whether any meal is stored for the venue and date.
func (r *MealRepository) HasMealsForDate(location, date string) (bool, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM meals WHERE location = ? AND date = ?",
		location, date,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check meals for date: %w", err)
	}
	return count > 0, nil
}

// GetMealCount returns the total number of stored meals.
func (r *MealRepository) GetMealCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM meals").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get meal count: %w", err)
	}
	return count, nil
}
