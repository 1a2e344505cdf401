package api

import (
	"io"

	"github.com/bytedance/sonic"

	"todo-api/domain"
)

const requestBodyMaxSize = 64 * 1024 // 64 KiB

type messageResponse struct {
	Message string `json:"message"`
}

type todoResponse struct {
	Message string      `json:"message"`
	Todo    domain.Todo `json:"todo"`
}

type loginResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
}

func decodeBody(r io.Reader, v any) error {
	dec := sonic.ConfigStd.NewDecoder(io.LimitReader(r, requestBodyMaxSize))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
