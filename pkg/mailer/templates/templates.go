package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	htmpl "html/template"
	"io"
	"reflect"
	"strings"
	"sync"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// EmailData defines standard fields for email templates.
type EmailData struct {
	Name           string `json:"Name"`
	Email          string `json:"Email"`
	RecipientEmail string `json:"RecipientEmail"`
	Type           string `json:"Type"`

	AppName        string `json:"AppName"`
	CompanyName    string `json:"CompanyName"`
	CompanyAddress string `json:"CompanyAddress"`
	LogoURL        string `json:"LogoURL"`
	SupportURL     string `json:"SupportURL"`

	IP        string            `json:"IP"`
	UserAgent string            `json:"UserAgent"`
	Location  string            `json:"Location"`
	Time      string            `json:"Time"`
	TimeAt    time.Time         `json:"TimeAt"`
	Changes   map[string]string `json:"Changes"`
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || rv.IsZero() {
			return fallback
		}
		return value
	}
}

func baseFuncs() map[string]any {
	return map[string]any{
		"upper":   strings.ToUpper,
		"default": defaultFn,
	}
}

var (
	htmlFuncMap = htmpl.FuncMap(baseFuncs())
	textFuncMap = texttpl.FuncMap(baseFuncs())
)

// Template names. Each has <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
const (
	Welcome         = "welcome"
	ProfileUpdated  = "profile_updated"
	PasswordChanged = "password_changed"
	AccountDeleted  = "account_deleted"
)

// Known reports whether name is one of the embedded templates.
func Known(name string) bool {
	switch name {
	case Welcome, ProfileUpdated, PasswordChanged, AccountDeleted:
		return true
	}
	return false
}

var (
	parseOnce sync.Once
	textSet   *texttpl.Template
	htmlSet   *htmpl.Template
	parseErr  error
)

// parsed loads every embedded template once. Subjects and plain-text bodies go
// into the text set, HTML bodies into the escaping html set.
func parsed() (*texttpl.Template, *htmpl.Template, error) {
	parseOnce.Do(func() {
		textSet, parseErr = texttpl.New("text").Funcs(textFuncMap).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl")
		if parseErr != nil {
			parseErr = fmt.Errorf("parse text templates: %w", parseErr)
			return
		}
		htmlSet, parseErr = htmpl.New("html").Funcs(htmlFuncMap).ParseFS(FS, "*.html.tmpl")
		if parseErr != nil {
			parseErr = fmt.Errorf("parse html templates: %w", parseErr)
		}
	})
	return textSet, htmlSet, parseErr
}

type executor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

func execute(set executor, filename string, data any) (string, error) {
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, filename, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", filename, err)
	}
	return buf.String(), nil
}

// Render renders the subject, text and html parts of the named template.
func Render(name string, data any) (subject string, text string, html string, err error) {
	if !Known(name) {
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}
	ts, hs, err := parsed()
	if err != nil {
		return "", "", "", err
	}
	if subject, err = execute(ts, name+".subject.tmpl", data); err != nil {
		return "", "", "", err
	}
	if text, err = execute(ts, name+".text.tmpl", data); err != nil {
		return "", "", "", err
	}
	if html, err = execute(hs, name+".html.tmpl", data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
