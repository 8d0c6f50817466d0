package main

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	const accessAttemptsPerMinute = 10
	var (
		aiLimiter     = httprate.LimitByIP(app.cfg.AIRatePerMinute, time.Minute)
		accessLimiter = httprate.LimitByIP(accessAttemptsPerMinute, time.Minute)
	)

	session := alice.New(app.sessionManager.LoadAndSave, app.noSurf, commonContext, app.authenticate)
	authenticated := session.Append(app.mustAuthenticate)
	scoped := authenticated.Append(app.patientScope)
	generation := scoped.Append(aiLimiter)

	mux.HandleFunc("GET /api/healthy", app.healthy)
	mux.Handle("GET /metrics", app.metrics.handler())

	mux.Handle("GET /api/session", session.ThenFunc(app.sessionStatus))
	mux.Handle("POST /api/access", session.Append(accessLimiter).ThenFunc(app.access))
	mux.Handle("POST /api/logout", session.ThenFunc(app.logout))
	mux.Handle("POST /api/access/change", authenticated.Append(accessLimiter).ThenFunc(app.changeAccessCode))

	mux.Handle("GET /api/patients", authenticated.ThenFunc(app.listPatients))
	mux.Handle("POST /api/patients", authenticated.ThenFunc(app.createPatient))
	mux.Handle("GET /api/patients/{id}", authenticated.ThenFunc(app.getPatient))
	mux.Handle("POST /api/patients/{id}/select", authenticated.ThenFunc(app.selectPatient))
	mux.Handle("POST /api/patients/{id}/rename", authenticated.ThenFunc(app.renamePatient))
	mux.Handle("POST /api/patients/{id}/reset", authenticated.ThenFunc(app.resetPatient))
	mux.Handle("DELETE /api/patients/{id}", authenticated.ThenFunc(app.deletePatient))

	mux.Handle("GET /api/form", scoped.ThenFunc(app.getForm))
	mux.Handle("PATCH /api/form", scoped.ThenFunc(app.patchForm))
	mux.Handle("GET /api/form/summary", scoped.ThenFunc(app.formSummary))
	mux.Handle("GET /api/scenarios", authenticated.ThenFunc(app.listScenarios))
	mux.Handle("POST /api/form/scenario", scoped.ThenFunc(app.applyScenario))

	mux.Handle("POST /api/notes/generate", generation.ThenFunc(app.generateNote))
	mux.Handle("POST /api/notes", scoped.ThenFunc(app.appendNote))
	mux.Handle("PUT /api/notes/{noteID}", scoped.ThenFunc(app.updateNote))
	mux.Handle("DELETE /api/notes/{noteID}", scoped.ThenFunc(app.deleteNote))
	mux.Handle("GET /api/notes/text", scoped.ThenFunc(app.notesText))

	mux.Handle("GET /api/export/pdf", scoped.ThenFunc(app.exportPDF))
	mux.Handle("POST /api/export/pdf", scoped.ThenFunc(app.exportPDF))
	mux.Handle("GET /api/export/docx", scoped.ThenFunc(app.exportDOCX))
	mux.Handle("GET /api/export/label", scoped.ThenFunc(app.exportLabel))
	mux.Handle("GET /api/export/zpl", scoped.ThenFunc(app.exportZPL))

	mux.Handle("GET /api/settings/layout", authenticated.ThenFunc(app.getLayoutSettings))
	mux.Handle("PUT /api/settings/layout", authenticated.ThenFunc(app.putLayoutSettings))
	mux.Handle("GET /api/settings/style", authenticated.ThenFunc(app.getStyleExemplar))
	mux.Handle("PUT /api/settings/style", authenticated.ThenFunc(app.putStyleExemplar))
	mux.Handle("POST /api/settings/style/test", authenticated.Append(aiLimiter).ThenFunc(app.testStyle))
	mux.Handle("GET /api/settings/theme", authenticated.ThenFunc(app.getTheme))
	mux.Handle("PUT /api/settings/theme", authenticated.ThenFunc(app.putTheme))

	mux.Handle("GET /api/templates", authenticated.ThenFunc(app.listTemplates))
	mux.Handle("POST /api/templates", scoped.ThenFunc(app.saveTemplate))
	mux.Handle("POST /api/templates/{name}/load", scoped.ThenFunc(app.loadTemplate))
	mux.Handle("DELETE /api/templates/{name}", authenticated.ThenFunc(app.deleteTemplate))

	mux.Handle("POST /api/shift-report", authenticated.Append(aiLimiter).ThenFunc(app.shiftReport))

	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.clientError(w, r, http.StatusNotFound)
	}))

	return alice.New(app.recoverPanic, app.logRequest, secureHeaders).
		Then(timeoutHandler(mux, app.cfg.RequestTimeout))
}
