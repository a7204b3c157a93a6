package httppresentation

import (
	"io"
	"net/http"

	appaccount "github.com/Zhima-Mochi/fooddelivery/internal/application/account"
	appauth "github.com/Zhima-Mochi/fooddelivery/internal/application/auth"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/account"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
)

var errImageRequired = errs.Validation("Image file is required")

func (h *Handler) handleGrantToken(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	pair, err := h.svc.Auth.Grant(r.Context(), appauth.GrantCommand{
		GrantType:    req.GrantType,
		UserType:     req.UserType,
		Username:     req.Username,
		Password:     req.Password,
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTokenResponse(pair))
}

func (h *Handler) handleRevokeToken(w http.ResponseWriter, r *http.Request) {
	var req revokeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := h.svc.Auth.Revoke(r.Context(), claimsFrom(r.Context()), req.RefreshToken); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	acc, err := h.svc.Accounts.GetProfile(r.Context(), claimsFrom(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(acc))
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	acc, err := h.svc.Accounts.UpdateProfile(r.Context(), claimsFrom(r.Context()), req.toProfile())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(acc))
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	caller := claimsFrom(r.Context())
	err := h.svc.Auth.ChangePassword(r.Context(), appauth.ChangePasswordCommand{
		UserID:      caller.UserID,
		Role:        caller.Role,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUploadProfileImage(w http.ResponseWriter, r *http.Request) {
	withImage(w, r, func(file io.Reader, name string) {
		acc, err := h.svc.Accounts.UploadImage(r.Context(), claimsFrom(r.Context()), file, name)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toAccountResponse(acc))
	})
}

func (h *Handler) handleRemoveProfileImage(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Accounts.RemoveImage(r.Context(), claimsFrom(r.Context())); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request, role account.Role) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	acc, err := h.svc.Accounts.Register(r.Context(), appaccount.RegisterCommand{
		Role:     role,
		Password: req.Password,
		Profile: account.Profile{
			Username:  req.Username,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		},
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(acc))
}
