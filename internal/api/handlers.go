package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/technosupport/ts-shopguard/internal/users"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// profileResponse is the owner profile without the credential material.
type profileResponse struct {
	ID               string   `json:"id"`
	Email            string   `json:"email"`
	FirstName        string   `json:"first_name"`
	LastName         string   `json:"last_name"`
	MobileNumber     string   `json:"mobile_number"`
	AlternateNumbers []string `json:"alternate_numbers,omitempty"`
	ShopName         string   `json:"shop_name"`
	ShopAddress      string   `json:"shop_address"`
	OpeningTime      string   `json:"opening_time"`
	ClosingTime      string   `json:"closing_time"`
	Sensitivity      int      `json:"sensitivity"`
}

func toProfileResponse(p *users.Profile) profileResponse {
	return profileResponse{
		ID:               p.ID.String(),
		Email:            p.Email,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		MobileNumber:     p.MobileNumber,
		AlternateNumbers: p.AlternateNumbers,
		ShopName:         p.ShopName,
		ShopAddress:      p.ShopAddress,
		OpeningTime:      p.OpeningTime,
		ClosingTime:      p.ClosingTime,
		Sensitivity:      p.Sensitivity,
	}
}

func rawToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
