package domain

import "fmt"

// ErrSeriesNotFound indicates no price history could be obtained for a ticker
// after exhausting every retrieval strategy. Fatal for the request.
type ErrSeriesNotFound struct {
	Symbol   string
	Language Language
}

func (e ErrSeriesNotFound) Error() string {
	if e.Language == LanguageES {
		return fmt.Sprintf("Serie de precios para %s no encontrada. Por favor intente con otra fuente o verifique el símbolo.", e.Symbol)
	}
	return fmt.Sprintf("Price series for %s not found. Please try a different source or verify the symbol.", e.Symbol)
}

// ErrGoldUnavailable indicates the gold reference series could not be obtained
// by any fallback. Fatal: every downstream ratio depends on it.
type ErrGoldUnavailable struct {
	Language Language
}

func (e ErrGoldUnavailable) Error() string {
	if e.Language == LanguageES {
		return "Precio del oro no disponible. Los mercados podrían estar cerrados."
	}
	return "Gold price unavailable. Markets might be closed or service interrupted."
}
