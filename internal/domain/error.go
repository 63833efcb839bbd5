package domain

// ErrorResponse é a estrutura padronizada para respostas de erro na API.
// @Description Estrutura padronizada para respostas de erro na API.
type ErrorResponse struct {
	Success  bool   `json:"success" example:"false"`
	Code     int    `json:"code" example:"400"`
	Category string `json:"category" example:"VALIDATION_ERROR"`
	Message  string `json:"message" example:"A quantidade deve ser maior que zero."`
}

// CartResponse é o envelope de sucesso das rotas de carrinho.
// @Description Envelope { success, cart } devolvido por todas as operações de carrinho.
type CartResponse struct {
	Success bool `json:"success" example:"true"`
	Cart    Cart `json:"cart"`
}
