package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Student is one row of the Student table
type Student struct {
	ID         int64
	Name       string
	Department string
	Marks      float64
}

func (s Student) String() string {
	return fmt.Sprintf("StudentID: %d, Name: %s, Department: %s, Marks: %s",
		s.ID, s.Name, s.Department, strconv.FormatFloat(s.Marks, 'f', -1, 64))
}

// Students is the data-access layer for the Student table. It owns the
// connection it was constructed with and closes it in Close.
type Students struct {
	db *DB
}

// NewStudents returns a repository over db. db may be nil when the
// connection could not be established; every operation then fails with
// ErrUnavailable.
func NewStudents(db *DB) *Students {
	return &Students{db: db}
}

// Create inserts s. It succeeds only when exactly one row was written.
func (r *Students) Create(s *Student) error {
	result, err := r.db.exec(`
		INSERT INTO Student (StudentID, Name, Department, Marks)
		VALUES (?, ?, ?, ?)
	`, s.ID, s.Name, s.Department, s.Marks)
	if err != nil {
		return r.fail("create", s.ID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return r.fail("create", s.ID, err)
	}
	if n != 1 {
		return r.fail("create", s.ID, fmt.Errorf("expected 1 row affected, got %d", n))
	}

	log.Debug().Int64("student_id", s.ID).Msg("Student created")
	return nil
}

// List returns every student ordered by ID. An empty table yields an empty
// slice and no error.
func (r *Students) List() ([]*Student, error) {
	rows, err := r.db.query(`
		SELECT StudentID, Name, Department, Marks
		FROM Student
		ORDER BY StudentID
	`)
	if err != nil {
		return nil, r.fail("list", 0, err)
	}
	defer rows.Close()

	students := make([]*Student, 0)
	for rows.Next() {
		s := &Student{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Department, &s.Marks); err != nil {
			return nil, r.fail("scan", 0, err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail("list", 0, err)
	}

	log.Trace().Int("count", len(students)).Msg("Students listed")
	return students, nil
}

// Get retrieves a student by ID
func (r *Students) Get(id int64) (*Student, error) {
	if err := r.db.available(); err != nil {
		return nil, r.fail("get", id, err)
	}

	s := &Student{}
	err := r.db.queryRow(`
		SELECT StudentID, Name, Department, Marks
		FROM Student WHERE StudentID = ?
	`, id).Scan(&s.ID, &s.Name, &s.Department, &s.Marks)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.fail("get", id, ErrNotFound)
	}
	if err != nil {
		return nil, r.fail("get", id, err)
	}
	return s, nil
}

// Update overwrites the name, department and marks of the student with
// s.ID. ErrNotFound is returned when no row matched.
func (r *Students) Update(s *Student) error {
	result, err := r.db.exec(`
		UPDATE Student SET Name = ?, Department = ?, Marks = ?
		WHERE StudentID = ?
	`, s.Name, s.Department, s.Marks, s.ID)
	if err != nil {
		return r.fail("update", s.ID, err)
	}

	if err := expectMatch(result); err != nil {
		return r.fail("update", s.ID, err)
	}

	log.Debug().Int64("student_id", s.ID).Msg("Student updated")
	return nil
}

// Delete removes the student with the given ID. ErrNotFound is returned
// when no row matched.
func (r *Students) Delete(id int64) error {
	result, err := r.db.exec("DELETE FROM Student WHERE StudentID = ?", id)
	if err != nil {
		return r.fail("delete", id, err)
	}

	if err := expectMatch(result); err != nil {
		return r.fail("delete", id, err)
	}

	log.Debug().Int64("student_id", id).Msg("Student deleted")
	return nil
}

// Close releases the connection. Safe to call more than once; close errors
// are logged and dropped.
func (r *Students) Close() {
	if r == nil || r.db == nil {
		return
	}
	if err := r.db.Close(); err != nil {
		log.Debug().Err(err).Msg("Error closing database (ignored)")
	}
}

// expectMatch returns ErrNotFound when a keyed statement touched no rows
func expectMatch(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// fail classifies and logs err for op, then wraps it for the caller
func (r *Students) fail(op string, id int64, err error) error {
	err = classify(err)

	event := log.Error()
	if errors.Is(err, ErrNotFound) {
		event = log.Debug()
	}
	if id != 0 {
		event = event.Int64("student_id", id)
	}
	event.Err(err).Str("op", op).Msg("Student operation failed")

	return fmt.Errorf("failed to %s student: %w", op, err)
}
