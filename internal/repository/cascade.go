package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type cascadeStep struct {
	label string
	query string
}

// subjectTreeSteps deletes every row hanging off the subjects selected by scope, leaves first.
// scope is a subquery yielding subject ids and referencing $1.
func subjectTreeSteps(scope string) []cascadeStep {
	homeworks := `SELECT id FROM homeworks WHERE subject_id IN (` + scope + `)`
	submissions := `SELECT id FROM submissions WHERE homework_id IN (` + homeworks + `)`
	return []cascadeStep{
		{"grades", `DELETE FROM grades WHERE submission_id IN (` + submissions + `)`},
		{"answers", `DELETE FROM answers WHERE submission_id IN (` + submissions + `)`},
		{"submissions", `DELETE FROM submissions WHERE homework_id IN (` + homeworks + `)`},
		{"questions", `DELETE FROM questions WHERE homework_id IN (` + homeworks + `)`},
		{"homeworks", `DELETE FROM homeworks WHERE subject_id IN (` + scope + `)`},
		{"enrollments", `DELETE FROM enrollments WHERE subject_id IN (` + scope + `)`},
	}
}

func runCascade(ctx context.Context, tx *sqlx.Tx, steps []cascadeStep, arg interface{}) error {
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query, arg); err != nil {
			return fmt.Errorf("delete %s: %w", step.label, err)
		}
	}
	return nil
}

// deleteOwned removes the final row of a cascade, returning ErrNoRows when it did not exist.
func deleteOwned(ctx context.Context, tx *sqlx.Tx, label, query string, arg interface{}) error {
	res, err := tx.ExecContext(ctx, query, arg)
	if err != nil {
		return fmt.Errorf("delete %s: %w", label, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
