package echoconsole

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/confadmin/core"
	"github.com/trezcool/confadmin/core/audit"
	"github.com/trezcool/confadmin/core/form"
	"github.com/trezcool/confadmin/core/user"
	"github.com/trezcool/confadmin/services/backend"
)

type (
	kycDocument struct {
		Kind       string
		URL        string
		IsImage    bool
		UploadedAt string
	}

	kycPage struct {
		Target    user.User
		KYC       user.KYC
		Documents []kycDocument
		Action    string
		Reason    form.Field
		Error     string
		CanAccept bool
		CanReject bool
	}
)

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

func (api *usersApi) renderKYC(ctx echo.Context, code int, target user.User, kyc user.KYC, decision *user.KYCDecision, errs map[string]string) error {
	docs := make([]kycDocument, 0, len(kyc.Documents))
	for _, doc := range kyc.Documents {
		docs = append(docs, kycDocument{
			Kind:       form.Humanize(doc.Kind),
			URL:        api.s.backend.StorageURL(doc.Path),
			IsImage:    imageExts[strings.ToLower(path.Ext(doc.Path))],
			UploadedAt: core.FormatDateTime(doc.UploadedAt),
		})
	}

	var reason form.Field
	for _, fld := range form.Describe(decision, errs, nil) {
		if fld.Name == "reason" {
			reason = fld
		}
	}
	pg := kycPage{
		Target:    target,
		KYC:       kyc,
		Documents: docs,
		Action:    "/users/" + url.PathEscape(target.ID) + "/kyc",
		Reason:    reason,
		Error:     errs[form.NonFieldKey],
		CanAccept: kyc.CanAccept(),
		CanReject: kyc.CanReject(),
	}
	if msg, ok := errs["status"]; ok && pg.Error == "" {
		pg.Error = msg
	}

	var toasts []toast
	if pg.Error != "" {
		toasts = append(toasts, toast{Kind: flashError, Message: pg.Error})
	}
	return api.s.render(ctx, code, "kyc", "KYC of "+target.FullName(), pg, toasts...)
}

// kycOf loads the user of the :id param and their KYC file.
func (api *usersApi) kycOf(ctx echo.Context) (user.User, user.KYC, error) {
	reqCtx := ctx.Request().Context()
	id := ctx.Param("id")

	target, err := api.s.userSvc.GetByID(reqCtx, id)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return user.User{}, user.KYC{}, errHttpNotFound
		}
		return user.User{}, user.KYC{}, err
	}
	kyc, err := api.s.userSvc.GetKYC(reqCtx, id)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return user.User{}, user.KYC{}, echo.NewHTTPError(http.StatusNotFound, "this user has not submitted a KYC file")
		}
		return user.User{}, user.KYC{}, err
	}
	return target, kyc, nil
}

func (api *usersApi) kycPage(ctx echo.Context) error {
	target, kyc, err := api.kycOf(ctx)
	if err != nil {
		return err
	}
	return api.renderKYC(ctx, http.StatusOK, target, kyc, &user.KYCDecision{}, nil)
}

func (api *usersApi) decideKYC(ctx echo.Context) error {
	target, kyc, err := api.kycOf(ctx)
	if err != nil {
		return err
	}
	decision := new(user.KYCDecision)
	if err = ctx.Bind(decision); err != nil {
		return api.renderKYC(ctx, http.StatusBadRequest, target, kyc, decision, map[string]string{form.NonFieldKey: "invalid form submission"})
	}

	reqCtx := ctx.Request().Context()
	reviewed, err := api.s.userSvc.DecideKYC(reqCtx, target.ID, *decision)
	if err != nil {
		if isFormError(err) {
			return api.renderKYC(ctx, http.StatusUnprocessableEntity, target, kyc, decision, form.FieldErrors(err, api.s.translator))
		}
		return errors.Wrap(err, "reviewing kyc")
	}

	api.s.cache.Invalidate(reqCtx, resUsers)
	summary := fmt.Sprintf("%s KYC of %s", reviewed.Status, target.Email)
	if reviewed.Reason != "" {
		summary += ": " + reviewed.Reason
	}
	api.s.auditSvc.Record(reqCtx, actorOf(ctx), audit.ActionReview, resKYC, target.ID, summary)
	api.s.setFlash(ctx, flashSuccess, fmt.Sprintf("KYC of %s %s.", target.Email, reviewed.Status))
	return ctx.Redirect(http.StatusSeeOther, "/users/"+url.PathEscape(target.ID)+"/kyc")
}
