package serviceutils

import (
	"github.com/labstack/echo/v4"
	"github.com/locvowork/excelmapper/internal/logger"
)

// Response is the JSON envelope of every API answer.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func ResponseSuccess(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// ResponseError logs err and answers with the error text.
func ResponseError(c echo.Context, status int, message string, err error) error {
	resp := Response{Message: message}
	if err != nil {
		resp.Error = err.Error()
		logger.ErrorLog(c.Request().Context(), message, err)
	}
	return c.JSON(status, resp)
}
