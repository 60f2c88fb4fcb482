package database

import (
	"context"
	"fmt"
	"time"

	"slotbook/internal/models"

	"github.com/google/uuid"
)

// CreateStudent registers a student. A WhatsApp number registers once.
func (db *DB) CreateStudent(ctx context.Context, s *models.Student) error {
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now().UTC()

	query, args, err := db.sb.Insert("students").
		Columns("id", "student_name", "whatsapp_number", "highest_qualification", "working_in_it", "created_at").
		Values(s.ID, s.StudentName, s.WhatsappNumber, s.HighestQualification, s.WorkingInIT, s.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert student query: %w", err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("student %s: %w", s.WhatsappNumber, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

// ListStudents returns registrations, newest first.
func (db *DB) ListStudents(ctx context.Context) ([]models.Student, error) {
	query, args, err := db.sb.Select("id", "student_name", "whatsapp_number", "highest_qualification", "working_in_it", "created_at").
		From("students").OrderBy("created_at DESC", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	students := []models.Student{}
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(&s.ID, &s.StudentName, &s.WhatsappNumber, &s.HighestQualification, &s.WorkingInIT, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate students: %w", err)
	}
	return students, nil
}
