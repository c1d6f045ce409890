package identity

import (
	"fmt"
	"net/http"
)

// Идентификация выполняется вышестоящим шлюзом: сюда запрос приходит
// уже с разрешённым идентификатором аккаунта в заголовке.
const accountHeader = "X-Account-ID"

// FromRequest извлекает идентификатор аккаунта из запроса.
func FromRequest(r *http.Request) (string, error) {
	accountID := r.Header.Get(accountHeader)
	if accountID == "" {
		return "", fmt.Errorf("missing %s header", accountHeader)
	}
	return accountID, nil
}
