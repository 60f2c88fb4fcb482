package service

import (
	"context"

	"slotbook/internal/domain"
	"slotbook/internal/models"
	"slotbook/internal/validation"

	"github.com/rs/zerolog"
)

type StudentService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewStudentService(repo domain.Repository, logger *zerolog.Logger) *StudentService {
	return &StudentService{repo: repo, logger: logger}
}

func (s *StudentService) Register(ctx context.Context, student *models.Student) error {
	if err := validation.ValidateStudent(student); err != nil {
		return err
	}
	if err := s.repo.CreateStudent(ctx, student); err != nil {
		return err
	}
	s.logger.Info().Str("student_id", student.ID).Msg("Student registered")
	return nil
}

func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	return s.repo.ListStudents(ctx)
}

// Public drops contact details from the registration list.
func (s *StudentService) Public(ctx context.Context) ([]models.PublicStudent, error) {
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PublicStudent, 0, len(students))
	for _, st := range students {
		out = append(out, models.PublicStudent{
			StudentName:          st.StudentName,
			HighestQualification: st.HighestQualification,
		})
	}
	return out, nil
}
