package client

import (
	"context"
	"net/http"

	"slotbook/internal/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges admin credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	var res models.LoginResult
	body := loginRequest{Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", "", nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Profile(ctx context.Context, token string) (*models.Admin, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	var admin models.Admin
	if err := c.doGet(ctx, "/auth/profile", token, &admin); err != nil {
		return nil, err
	}
	return &admin, nil
}
