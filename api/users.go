package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"todo-api/storage"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func hello() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, messageResponse{Message: "Hello, World! API is working!"})
	}
}

func register(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var req registerRequest
		if err := decodeBody(c.Request().Body, &req); err != nil {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		}
		if req.Username == "" || req.Email == "" || req.Password == "" {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "username, email and password are required"})
		}

		if err := store.CreateUser(ctx, req.Username, req.Email, req.Password); err != nil {
			if errors.Is(err, storage.ErrEmailTaken) {
				return c.JSON(http.StatusBadRequest, messageResponse{Message: "Email already exists"})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Failed to register user"})
		}
		return c.JSON(http.StatusCreated, messageResponse{Message: "User registered successfully"})
	}
}

func login(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var req loginRequest
		if err := decodeBody(c.Request().Body, &req); err != nil {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		}

		userID, err := store.VerifyUser(ctx, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, storage.ErrInvalidCredentials) {
				return c.JSON(http.StatusUnauthorized, messageResponse{Message: "Invalid credentials"})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Failed to log in"})
		}

		token, err := auth.IssueToken(userID)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Failed to generate token"})
		}
		return c.JSON(http.StatusOK, loginResponse{Message: "Login successful", AccessToken: token})
	}
}

func dashboard(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			// Token failures are logged, never echoed back to the caller.
			c.Logger().Debug(err)
			return c.JSON(http.StatusUnauthorized, messageResponse{Message: "Invalid or missing token"})
		}

		user, err := store.UserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return c.JSON(http.StatusUnauthorized, messageResponse{Message: "Unknown user"})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Failed to load user"})
		}
		return c.JSON(http.StatusOK, messageResponse{Message: fmt.Sprintf("Welcome %s!", user.Username)})
	}
}

func logout() echo.HandlerFunc {
	return func(c echo.Context) error {
		// Tokens are discarded client side; nothing to revoke here.
		return c.JSON(http.StatusOK, messageResponse{Message: "Logout successful"})
	}
}
