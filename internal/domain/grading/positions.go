package grading

import "slices"

// Position is a playing role with its ordered competency list.
type Position struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	Abbreviation string   `json:"abbr"`
	Competencies []string `json:"competencies"`
}

var positions = []Position{ //nolint:gochecknoglobals // static table
	{ID: "GR", Label: "Guarda-Redes", Abbreviation: "GR", Competencies: []string{
		"Defesa a remate", "Defesa em cruzamentos", "Defesa da profundidade", "Construção a partir de trás",
	}},
	{ID: "DC", Label: "Defesa Central", Abbreviation: "DC", Competencies: []string{
		"Defesa em cruzamentos", "Defesa do espaço nas costas", "Duelos", "Saída para pressionar",
		"Construção sob pressão", "Construção com espaço e tempo",
	}},
	{ID: "LD", Label: "Lateral / Ala", Abbreviation: "L", Competencies: []string{
		"Defesa 1v1", "Defesa da profundidade", "Defesa em cruzamentos", "Saltar à pressão",
		"Participação na construção", "Contribuição no último terço",
	}},
	{ID: "MD", Label: "Médio Defensivo", Abbreviation: "MD", Competencies: []string{
		"Defesa da zona", "Capacidade de pressão", "Duelos", "Movimento para receber",
		"Retenção de bola", "Progressão de bola",
	}},
	{ID: "MC", Label: "Médio Centro", Abbreviation: "MC", Competencies: []string{
		"Movimento para receber", "Retenção de bola", "Progressão de bola", "Chegada a zonas de finalização",
		"Duelos", "Defesa da zona", "Capacidade de pressão",
	}},
	{ID: "MAO", Label: "Médio Ofensivo", Abbreviation: "MOF", Competencies: []string{
		"Movimento para receber", "Progressão de bola", "Criação de oportunidades",
		"Chegada a zonas de finalização", "Finalização", "Capacidade de pressão", "Defesa da zona",
	}},
	{ID: "EX", Label: "Extremo", Abbreviation: "EX", Competencies: []string{
		"Drible", "Cruzamento", "Organização de jogo", "Penetração em profundidade", "Finalização",
		"Alta pressão", "Regresso defensivo",
	}},
	{ID: "AV", Label: "Avançado", Abbreviation: "AV", Competencies: []string{
		"Jogo como homem-alvo", "Penetração em profundidade", "Organização de jogo", "Finalização",
		"Capacidade de pressão", "Defesa da zona",
	}},
}

var positionIndex = func() map[string]int { //nolint:gochecknoglobals // static table index
	idx := make(map[string]int, len(positions))
	for i, p := range positions {
		idx[p.ID] = i
	}
	return idx
}()

func (p Position) clone() Position {
	p.Competencies = slices.Clone(p.Competencies)
	return p
}

// Positions returns every position in display order. Callers get copies.
func Positions() []Position {
	out := make([]Position, len(positions))
	for i, p := range positions {
		out[i] = p.clone()
	}
	return out
}

// Lookup finds a position by id.
func Lookup(positionID string) (Position, bool) {
	i, ok := positionIndex[positionID]
	if !ok {
		return Position{}, false
	}
	return positions[i].clone(), true
}

// CompetenciesFor returns the ordered competencies of a position, or nil for
// an unknown or empty id.
func CompetenciesFor(positionID string) []string {
	i, ok := positionIndex[positionID]
	if !ok {
		return nil
	}
	return slices.Clone(positions[i].Competencies)
}

// HasCompetency reports whether competency belongs to the position.
func HasCompetency(positionID, competency string) bool {
	i, ok := positionIndex[positionID]
	if !ok {
		return false
	}
	return slices.Contains(positions[i].Competencies, competency)
}

// Label returns the display label of a position, or the id itself when unknown.
func Label(positionID string) string {
	if i, ok := positionIndex[positionID]; ok {
		return positions[i].Label
	}
	return positionID
}
