package webauth

import (
	"encoding/json"
	"net/http"
)

// challengeResponse — тело ответа на GET.
type challengeResponse struct {
	Transaction       string `json:"transaction"`
	NetworkPassphrase string `json:"network_passphrase,omitempty"`
}

// submitRequest — тело POST.
type submitRequest struct {
	Transaction string `json:"transaction"`
}

// tokenResponse — тело ответа на POST.
type tokenResponse struct {
	Token string `json:"token,omitempty"`
	Error string `json:"error,omitempty"`
}

// parseChallenge извлекает challenge из ответа на GET.
func parseChallenge(resp *response, passphrase string) (string, error) {
	if resp.status < 200 || resp.status > 299 {
		return "", &Error{Kind: KindChallengeRequest, StatusCode: resp.status, Body: string(resp.body)}
	}

	var cr challengeResponse
	if err := json.Unmarshal(resp.body, &cr); err != nil {
		return "", &Error{Kind: KindMissingTransaction, StatusCode: resp.status, Body: string(resp.body), Err: err}
	}
	if cr.Transaction == "" {
		return "", &Error{Kind: KindMissingTransaction, StatusCode: resp.status, Body: string(resp.body)}
	}
	if cr.NetworkPassphrase != "" && cr.NetworkPassphrase != passphrase {
		return "", &Error{
			Kind:    KindInvalidNetworkPassphrase,
			Message: "expected " + passphrase + ", got " + cr.NetworkPassphrase,
		}
	}
	return cr.Transaction, nil
}

// parseSubmit интерпретирует ответ на POST по коду статуса.
func parseSubmit(resp *response) (string, error) {
	switch resp.status {
	case http.StatusOK, http.StatusBadRequest:
		var tr tokenResponse
		if err := json.Unmarshal(resp.body, &tr); err != nil {
			return "", &Error{Kind: KindSubmitUnknownResponse, StatusCode: resp.status, Body: string(resp.body), Err: err}
		}
		if tr.Error != "" {
			return "", &Error{Kind: KindSubmitErrorResponse, StatusCode: resp.status, Body: string(resp.body), Message: tr.Error}
		}
		if tr.Token != "" {
			return tr.Token, nil
		}
		return "", &Error{Kind: KindSubmitUnknownResponse, StatusCode: resp.status, Body: string(resp.body)}
	case http.StatusGatewayTimeout:
		return "", &Error{Kind: KindSubmitTimeout, StatusCode: resp.status}
	default:
		return "", &Error{Kind: KindSubmitUnknownResponse, StatusCode: resp.status, Body: string(resp.body)}
	}
}
