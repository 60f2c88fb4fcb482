package client

import (
	"context"
	"net/http"

	"slotbook/internal/models"
)

func (c *Client) RegisterStudent(ctx context.Context, s models.Student) (*models.Student, error) {
	var out models.Student
	if err := c.doJSON(ctx, http.MethodPost, "/students/register", "", nil, s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListStudents(ctx context.Context, token string) ([]models.Student, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	var out []models.Student
	if err := c.doGet(ctx, "/students", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PublicStudents returns the names and qualifications shown on the public page.
func (c *Client) PublicStudents(ctx context.Context) ([]models.PublicStudent, error) {
	var out []models.PublicStudent
	if err := c.doGet(ctx, "/students/public", "", &out); err != nil {
		return nil, err
	}
	return out, nil
}
