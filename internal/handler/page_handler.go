package handler

import (
	"fmt"
	"html"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PageHandler はルートガードの対象となるページルートの最小レンダリングを行う。
// 画面の実体はフロントエンドが担うため、ここではタイトルのみのHTMLを返す。
type PageHandler struct{}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

func writePage(w http.ResponseWriter, title string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>%s</title></head><body><h1>%s</h1></body></html>",
		html.EscapeString(title), html.EscapeString(title))
}

// Home はホームページを返す。
// GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	writePage(w, "PrepView")
}

// InterviewSetup は面接セットアップページを返す。
// GET /interview
func (h *PageHandler) InterviewSetup(w http.ResponseWriter, r *http.Request) {
	writePage(w, "Interview Setup")
}

// InterviewSession は面接実施ページを返す。
// GET /interview/{id}
func (h *PageHandler) InterviewSession(w http.ResponseWriter, r *http.Request) {
	writePage(w, "Interview "+chi.URLParam(r, "id"))
}

// Profile はプロフィールページを返す。
// GET /profile
func (h *PageHandler) Profile(w http.ResponseWriter, r *http.Request) {
	writePage(w, "Profile")
}

// Feedback はフィードバックページを返す。
// GET /feedback
func (h *PageHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	writePage(w, "Feedback")
}

// Signin はサインインページを返す。
// GET /signin
func (h *PageHandler) Signin(w http.ResponseWriter, r *http.Request) {
	writePage(w, "Sign In")
}

// Signup はサインアップページを返す。
// GET /signup
func (h *PageHandler) Signup(w http.ResponseWriter, r *http.Request) {
	writePage(w, "Sign Up")
}
