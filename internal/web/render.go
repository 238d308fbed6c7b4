package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

type page string

const (
	pageListing      page = "index.html"
	pageInCurriculum page = "desempenho.html"
	pageJanuary      page = "fora-do-tsi.html"
	pageComparison   page = "comparativo-tecnologias.html"
	pageRanking      page = "ranking.html"
	pageTotals       page = "frontend-backend.html"
	pageDatabases    page = "bancos-de-dados.html"
	pageCategories   page = "categorias.html"
)

var allPages = []page{
	pageListing, pageInCurriculum, pageJanuary, pageComparison,
	pageRanking, pageTotals, pageDatabases, pageCategories,
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// badgeClass turns a term into its CSS class, "Sql Server" -> "tech-sql-server".
func badgeClass(term string) string {
	return "tech-" + whitespaceRun.ReplaceAllString(strings.ToLower(term), "-")
}

var funcs = template.FuncMap{
	"badge": badgeClass,
	"pct":   func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"comma": func(n int64) string { return humanize.Comma(n) },
	"count": func(n int) string { return humanize.Comma(int64(n)) },
	"inc":   func(i int) int { return i + 1 },
	"join":  strings.Join,
}

type pageSet struct {
	templates map[page]*template.Template
}

// mustLoadPages parses the layout once per page so each page can define its own "content".
func mustLoadPages() *pageSet {
	ps := &pageSet{templates: make(map[page]*template.Template, len(allPages))}
	for _, p := range allPages {
		ps.templates[p] = template.Must(
			template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+string(p)),
		)
	}
	return ps
}

func (ps *pageSet) execute(w io.Writer, p page, data any) error {
	t, ok := ps.templates[p]
	if !ok {
		return fmt.Errorf("unknown page %q", p)
	}
	return t.ExecuteTemplate(w, "layout.html", data)
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, p page, data any) {
	var buf bytes.Buffer
	if err := h.pages.execute(&buf, p, data); err != nil {
		h.logger.Error("template render failed", zap.String("page", string(p)), zap.Error(err))
		http.Error(w, "Erro ao renderizar a página.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Debug("response write failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

// chartRenderer is satisfied by every go-echarts chart.
type chartRenderer interface {
	Render(w io.Writer) error
}

func (h *Handlers) renderChart(w http.ResponseWriter, r *http.Request, chart chartRenderer) {
	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		h.logger.Error("chart render failed", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "Erro ao renderizar o gráfico.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Debug("response write failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
}
