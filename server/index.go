package server

import (
	_ "embed"
	"html/template"
	"net/http"

	"github.com/minios-linux/proptrans/langmeta"
)

//go:embed web/index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

type languageOption struct {
	Code string
	Name string
}

type indexData struct {
	Languages []languageOption
	MaxSizeMB int
	Version   string
}

// indexHandler renders the upload form.
func indexHandler(version string) http.HandlerFunc {
	codes := langmeta.Supported()
	data := indexData{
		Languages: make([]languageOption, 0, len(codes)),
		MaxSizeMB: MaxFileSize >> 20,
		Version:   version,
	}
	for _, code := range codes {
		data.Languages = append(data.Languages, languageOption{Code: code, Name: langmeta.Resolve(code).Name})
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexTemplate.Execute(w, data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
