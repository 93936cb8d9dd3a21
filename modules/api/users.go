package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sonatahq/sonata-api/pkg/reconcile"
)

// me recomputes the canonical user view. A session whose backing account is
// gone gets retired here rather than lingering until expiry.
func (rt *Router) me(w http.ResponseWriter, r *http.Request) {
	info := sessionFrom(r.Context())

	user, err := rt.engine.GetUser(r.Context(), info.record.UserID)
	if err != nil {
		if reconcile.KindOf(err) == reconcile.KindUserNotFound {
			if err := rt.sessions.Invalidate(r.Context(), w, *info.record); err != nil {
				rt.log.WarnContext(r.Context(), "failed to clear session of gone user", slog.Any("error", err))
			}
			writeJSON(w, http.StatusNotFound, JSONResponse{
				Code:  string(reconcile.KindUserNotFound),
				Error: &ErrorDetail{Code: string(reconcile.KindUserNotFound), Message: "account no longer exists"},
				Meta:  map[string]any{"session_cleared": true},
			})
			return
		}
		respondEngineError(w, err)
		return
	}

	respondData(w, http.StatusOK, toUserPayload(user))
}

func (rt *Router) deleteMe(w http.ResponseWriter, r *http.Request) {
	info := sessionFrom(r.Context())

	if err := rt.engine.DeleteAccount(r.Context(), info.record.UserID); err != nil {
		respondEngineError(w, err)
		return
	}
	if err := rt.sessions.Invalidate(r.Context(), w, *info.record); err != nil {
		rt.log.WarnContext(r.Context(), "failed to clear session after account deletion", slog.Any("error", err))
	}

	w.WriteHeader(http.StatusNoContent)
}

type profileRequest struct {
	Email          string   `json:"email"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	Location       string   `json:"location"`
	Bio            string   `json:"bio"`
	Instruments    []string `json:"instruments"`
	ChildFirstName string   `json:"child_first_name"`
	ChildLastName  string   `json:"child_last_name"`

	// nil keeps the current image, "" removes it, anything else is taken as
	// an external URL.
	ProfileImageURL *string `json:"profile_image_url"`
}

// updateProfile completes or updates the profile. Multipart requests may
// carry an image upload; JSON requests manage the image by URL only.
func (rt *Router) updateProfile(w http.ResponseWriter, r *http.Request) {
	info := sessionFrom(r.Context())

	var (
		in  reconcile.ProfileInput
		err error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		in, err = rt.parseProfileMultipart(w, r)
	} else {
		in, err = parseProfileJSON(r)
	}
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondErrorCode(w, http.StatusRequestEntityTooLarge, "image_too_large", "profile image exceeds the size limit")
			return
		}
		respondErrorCode(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	user, err := rt.engine.CompleteProfile(r.Context(), info.record.UserID, in)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	if _, err := rt.sessions.Update(r.Context(), *info.record, user); err != nil {
		rt.log.WarnContext(r.Context(), "failed to refresh session after profile update",
			slog.String("user_id", user.ID), slog.Any("error", err))
	}

	respondData(w, http.StatusOK, toUserPayload(user))
}

// profileImage redirects to the resolved image URL. Accounts with no custom
// image get a 404 so clients fall back to their default asset.
func (rt *Router) profileImage(w http.ResponseWriter, r *http.Request) {
	info := sessionFrom(r.Context())

	user, err := rt.engine.GetUser(r.Context(), info.record.UserID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	if user.ProfileImage == "" || user.ProfileImage == reconcile.DefaultImage || user.ProfileImageURL == "" {
		respondErrorCode(w, http.StatusNotFound, "no_profile_image", "no profile image set")
		return
	}

	http.Redirect(w, r, user.ProfileImageURL, http.StatusFound)
}

func parseProfileJSON(r *http.Request) (reconcile.ProfileInput, error) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		return reconcile.ProfileInput{}, err
	}

	in := reconcile.ProfileInput{
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Location:       req.Location,
		Bio:            req.Bio,
		Instruments:    req.Instruments,
		ChildFirstName: req.ChildFirstName,
		ChildLastName:  req.ChildLastName,
	}
	in.Image = imageDecisionFromURL(req.ProfileImageURL)
	return in, nil
}

func (rt *Router) parseProfileMultipart(w http.ResponseWriter, r *http.Request) (reconcile.ProfileInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxProfileImageBytes+1<<20)
	if err := r.ParseMultipartForm(rt.cfg.MaxProfileImageBytes); err != nil {
		return reconcile.ProfileInput{}, err
	}

	form := r.MultipartForm
	value := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	in := reconcile.ProfileInput{
		Email:          value("email"),
		FirstName:      value("first_name"),
		LastName:       value("last_name"),
		Location:       value("location"),
		Bio:            value("bio"),
		ChildFirstName: value("child_first_name"),
		ChildLastName:  value("child_last_name"),
	}

	// Instruments arrive as repeated fields or one comma-separated value.
	for _, raw := range form.Value["instruments"] {
		for s := range strings.SplitSeq(raw, ",") {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				in.Instruments = append(in.Instruments, trimmed)
			}
		}
	}

	file, header, err := r.FormFile("profile_image")
	switch {
	case err == nil:
		defer func() { _ = file.Close() }()
		data, err := io.ReadAll(file)
		if err != nil {
			return reconcile.ProfileInput{}, err
		}
		contentType := header.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(data)
		}
		in.Image = reconcile.ImageDecision{
			Kind:        reconcile.ImageUpload,
			Data:        data,
			ContentType: contentType,
		}
	case errors.Is(err, http.ErrMissingFile):
		if urls, ok := form.Value["profile_image_url"]; ok {
			in.Image = imageDecisionFromURL(&urls[0])
		}
	default:
		return reconcile.ProfileInput{}, err
	}

	return in, nil
}

func imageDecisionFromURL(url *string) reconcile.ImageDecision {
	switch {
	case url == nil:
		return reconcile.ImageDecision{Kind: reconcile.ImageKeep}
	case *url == "":
		return reconcile.ImageDecision{Kind: reconcile.ImageRemove}
	default:
		return reconcile.ImageDecision{Kind: reconcile.ImageExternalURL, URL: *url}
	}
}
