package domain

// TicketAnalysis is the classification returned by the external AI service
// for a problem description. JSON field names follow its wire format.
type TicketAnalysis struct {
	Titulo          string `json:"titulo"`
	Categoria       string `json:"categoria"`
	Prioridade      string `json:"prioridade"`
	SugestaoSolucao string `json:"sugestao_solucao"`
}
