package export

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/okian/scout/internal/domain/grading"
	"github.com/okian/scout/internal/domain/model"
)

func sampleEntry(name string) Entry {
	return Entry{Report: model.Report{
		ID: "r-" + name,
		Evaluation: model.Evaluation{
			Name:            name,
			Age:             "19",
			Club:            "Vitória SC",
			PositionID:      "AV",
			MatchObserved:   "Vitória x Braga",
			Summary:         "Strong in the air.",
			ObservationDate: "18/02/2026",
			Ratings: map[string]model.Rating{
				"Finalização":                {Grade: grading.A, Note: "two goals"},
				"Penetração em profundidade": {Grade: grading.C},
			},
		},
	}}
}

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(w, h, color.NRGBA{R: 208, G: 2, B: 27, A: 255})
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestHTMLContent(t *testing.T) {
	svc := NewService(WithClubName("Atlético Cabeceirense"))
	res, err := svc.HTML(context.Background(), []Entry{sampleEntry("Rui Silva"), sampleEntry("")}, "test")
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	html := string(res.Data)

	for _, want := range []string{
		"Atlético Cabeceirense",
		"Rui Silva",
		"Nome do Jogador",
		"Avançado",
		"CLASSIFICAÇÃO GERAL",
		"2/6 competências avaliadas",
		"two goals",
		"Jogo: Vitória x Braga",
		"Strong in the air.",
		"Data: 18/02/2026",
		"Idade",
		">RS<",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in output", want)
		}
	}
	if n := strings.Count(html, `class="report break"`); n != 1 {
		t.Errorf("expected one page break, got %d", n)
	}
	if strings.Contains(html, `class="photo"`) {
		t.Error("no photo was given, expected initials only")
	}
	if res.MimeType != mimeHTML {
		t.Errorf("unexpected mime type %q", res.MimeType)
	}
}

func TestHTMLWithoutPosition(t *testing.T) {
	e := sampleEntry("Sem Posição")
	e.Report.PositionID = ""
	res, err := NewService().HTML(context.Background(), []Entry{e}, "test")
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	html := string(res.Data)
	if strings.Contains(html, "CLASSIFICAÇÃO GERAL") || strings.Contains(html, "AVALIAÇÃO POR COMPETÊNCIA") {
		t.Error("expected no grade blocks without a position")
	}
}

func TestHTMLWithPhoto(t *testing.T) {
	e := sampleEntry("Rui Silva")
	e.Photo = samplePNG(t, 400, 300)
	res, err := NewService().HTML(context.Background(), []Entry{e}, "test")
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(string(res.Data), `src="data:image/jpeg;base64,`) {
		t.Error("expected an embedded jpeg thumbnail")
	}
}

func TestHTMLWithBrokenPhoto(t *testing.T) {
	e := sampleEntry("Rui Silva")
	e.Photo = []byte("not an image")
	res, err := NewService().HTML(context.Background(), []Entry{e}, "test")
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(string(res.Data), ">RS<") {
		t.Error("expected initials fallback for an unreadable photo")
	}
}

func TestThumbnailIsSquare(t *testing.T) {
	uri, err := thumbnail(samplePNG(t, 640, 200))
	if err != nil {
		t.Fatalf("thumbnail: %v", err)
	}
	if !strings.HasPrefix(string(uri), "data:image/jpeg;base64,") {
		t.Fatalf("unexpected uri prefix: %.40s", uri)
	}
}

func TestExport(t *testing.T) {
	ctx := context.Background()

	t.Run("renders through the renderer", func(t *testing.T) {
		var got []byte
		svc := NewService(WithRenderer(RendererFunc(func(ctx context.Context, html []byte) ([]byte, error) {
			got = html
			return []byte("%PDF-1.7"), nil
		})))
		res, err := svc.Export(ctx, []Entry{sampleEntry("Rui Silva")}, GroupFilename("Rui Silva"))
		if err != nil {
			t.Fatalf("Export: %v", err)
		}
		if string(res.Data) != "%PDF-1.7" || res.MimeType != mimePDF || res.Filename != "Relatorios_Rui_Silva.pdf" {
			t.Errorf("unexpected result %+v", res)
		}
		if !bytes.Contains(got, []byte("Rui Silva")) {
			t.Error("renderer did not receive the report html")
		}
	})

	t.Run("renderer failure is wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		svc := NewService(WithRenderer(RendererFunc(func(context.Context, []byte) ([]byte, error) { return nil, boom })))
		_, err := svc.Export(ctx, []Entry{sampleEntry("A")}, "a.pdf")
		if !errors.Is(err, boom) {
			t.Errorf("expected wrapped renderer error, got %v", err)
		}
	})

	t.Run("missing renderer", func(t *testing.T) {
		_, err := NewService().Export(ctx, []Entry{sampleEntry("A")}, "a.pdf")
		if !errors.Is(err, ErrPDFDependencyMissing) {
			t.Errorf("expected ErrPDFDependencyMissing, got %v", err)
		}
	})

	t.Run("empty list", func(t *testing.T) {
		svc := NewService(WithRenderer(RendererFunc(func(context.Context, []byte) ([]byte, error) { return nil, nil })))
		_, err := svc.Export(ctx, nil, "a.pdf")
		if !errors.Is(err, ErrNothingToExport) {
			t.Errorf("expected ErrNothingToExport, got %v", err)
		}
	})
}

func TestFilenames(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{name: "group", got: GroupFilename("João  Félix"), expected: "Relatorios_João_Félix.pdf"},
		{name: "draft", got: DraftFilename("Rui Silva"), expected: "Observacao_Rui_Silva.pdf"},
		{name: "empty name", got: DraftFilename("   "), expected: "Observacao_Jogador.pdf"},
		{name: "path characters", got: GroupFilename("../etc/passwd"), expected: "Relatorios_etcpasswd.pdf"},
		{name: "only symbols", got: GroupFilename("?!"), expected: "Relatorios_Jogador.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, want %q", tt.got, tt.expected)
			}
		})
	}
}
