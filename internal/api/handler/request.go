package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/nomado-booking-ledger/internal/api"
	"github.com/sanosuguru/nomado-booking-ledger/internal/api/middleware"
)

func requireUserID(c echo.Context) (string, error) {
	userID := c.Request().Header.Get(middleware.UserIDHeader)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	return userID, nil
}

// bindAndValidate はリクエストボディを読み込み検証する
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	return c.Validate(req)
}

func pageParams(c echo.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	offset, _ = strconv.Atoi(c.QueryParam("offset"))
	return limit, offset
}

// parseDate は検証済みの YYYY-MM-DD を UTC の日付にする（空なら時刻のゼロ値）
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(api.DateLayout, s)
	return t
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(api.DateLayout)
}
