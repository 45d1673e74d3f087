package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/gmartins-dev/portal-faturamento/internal/domain"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/report"
	"github.com/gmartins-dev/portal-faturamento/pkg/logger"
)

// Apelidos aceitos para as colunas localizadas por nome.
var (
	orderAliases = []string{
		"Número do Pedido", "Numero do Pedido", "Pedido", "Nº Pedido",
		"Order ID", "Order", "ID do Pedido",
	}
	dateAliases = []string{
		"Data do Pedido", "Data de Envio", "Data Criação", "Data", "Date",
	}
	trackingAliases = []string{
		"Código de Rastreio", "Codigo de Rastreio", "Rastreio",
		"Tracking Code", "Tracking",
	}
	totalAliases = []string{"Total", "Valor Total", "Total Geral"}
)

// ResolvedColumns nomes reais das colunas localizadas por apelido em cada
// relatório. Vazio significa "não encontrada" (o reconciliador decide se isso
// é fatal ou degradação).
type ResolvedColumns struct {
	TrackingOrder string
	TrackingDate  string
	TrackingCode  string
	CostOrder     string
	CostDate      string
	CostTotal     string
}

// MatchedOrder um pedido presente nos dois relatórios.
type MatchedOrder struct {
	OrderID string // id sanitizado, como indexado
	Date    time.Time
	Track   report.Row
	Cost    report.Row
}

// ReconcileResult resultado da reconciliação: partição completa dos pedidos do
// mês. Todo pedido do relatório de rastreio aparece em Matched ou em
// UnmatchedTrackingIDs; todo pedido do relatório de custos aparece referenciado
// por um Matched ou em UnmatchedCostIDs.
type ReconcileResult struct {
	Matched              []MatchedOrder
	UnmatchedTrackingIDs []string
	UnmatchedCostIDs     []string
	Columns              ResolvedColumns
	TrackingRowsInMonth  int
}

// Reconcile cruza o relatório de rastreio (autoritativo: define QUAIS pedidos
// entram na cobrança) com o relatório de custos (define QUANTO cada um
// custou), restrito ao mês de referência.
//
// Fatais: coluna de pedido ou de data ausente no rastreio. Degradações:
// relatório de custos sem coluna de data processa sem filtro de mês; sem
// coluna de pedido, nenhum custo casa e todos os pedidos saem não casados.
func Reconcile(tracking, costs *report.Table, month time.Month, year int, log *logger.Logger) (*ReconcileResult, error) {
	if log == nil {
		log = logger.Nop()
	}
	res := &ReconcileResult{}

	if tracking.Empty() {
		return nil, fmt.Errorf("%w: relatório vazio", domain.ErrMissingOrderColumn)
	}
	res.Columns.TrackingOrder = report.FindColumn(tracking.Columns, orderAliases...)
	if res.Columns.TrackingOrder == "" {
		return nil, fmt.Errorf("%w: colunas disponíveis: %s",
			domain.ErrMissingOrderColumn, strings.Join(tracking.Columns, ", "))
	}
	// Uma coluna já resolvida não concorre de novo: "Pedido" é substring do
	// apelido "Data do Pedido" e serviria de coluna de data por engano.
	res.Columns.TrackingDate = report.FindColumn(
		excluding(tracking.Columns, res.Columns.TrackingOrder), dateAliases...)
	if res.Columns.TrackingDate == "" {
		return nil, fmt.Errorf("%w: colunas disponíveis: %s",
			domain.ErrMissingDateColumn, strings.Join(tracking.Columns, ", "))
	}
	res.Columns.TrackingCode = report.FindColumn(
		excluding(tracking.Columns, res.Columns.TrackingOrder, res.Columns.TrackingDate), trackingAliases...)

	res.Columns.CostOrder = report.FindColumn(costs.Columns, orderAliases...)
	res.Columns.CostDate = report.FindColumn(
		excluding(costs.Columns, res.Columns.CostOrder), dateAliases...)
	res.Columns.CostTotal = report.FindColumn(
		excluding(costs.Columns, res.Columns.CostOrder, res.Columns.CostDate), totalAliases...)
	if res.Columns.CostOrder == "" && !costs.Empty() {
		log.Warn().Msg("relatório de custos sem coluna de pedido; nenhum custo será casado")
	}
	if res.Columns.CostDate == "" && !costs.Empty() {
		log.Warn().Msg("relatório de custos sem coluna de data; processando sem filtro de mês")
	}

	// Índice de custos por id sanitizado. Primeira ocorrência vence; linhas
	// duplicadas de exportadores com repetição são ignoradas.
	costIndex := make(map[string]report.Row)
	var costOrder []string
	if res.Columns.CostOrder != "" {
		for _, row := range costs.Rows {
			if res.Columns.CostDate != "" {
				// Mesmo critério da passada de rastreio: data ilegível ou fora
				// do mês descarta a linha.
				d, ok := ParseRowDate(row[res.Columns.CostDate])
				if !ok || !InReferenceMonth(d, month, year) {
					continue
				}
			}
			id := SanitizeOrderID(row[res.Columns.CostOrder])
			if id == "" {
				continue
			}
			if _, seen := costIndex[id]; seen {
				continue
			}
			costIndex[id] = row
			costOrder = append(costOrder, id)
		}
	}

	// Passada pelo rastreio, na ordem do arquivo, restrita ao mês.
	used := make(map[string]bool)
	for _, row := range tracking.Rows {
		d, ok := ParseRowDate(row[res.Columns.TrackingDate])
		if !ok || !InReferenceMonth(d, month, year) {
			continue
		}
		res.TrackingRowsInMonth++
		id := SanitizeOrderID(row[res.Columns.TrackingOrder])
		if id == "" {
			continue
		}
		cost, found := costIndex[id]
		if !found {
			res.UnmatchedTrackingIDs = append(res.UnmatchedTrackingIDs, id)
			continue
		}
		used[id] = true
		res.Matched = append(res.Matched, MatchedOrder{
			OrderID: id,
			Date:    d,
			Track:   row,
			Cost:    cost,
		})
	}

	for _, id := range costOrder {
		if !used[id] {
			res.UnmatchedCostIDs = append(res.UnmatchedCostIDs, id)
		}
	}

	log.Info().
		Int("casados", len(res.Matched)).
		Int("rastreio_sem_custo", len(res.UnmatchedTrackingIDs)).
		Int("custo_sem_rastreio", len(res.UnmatchedCostIDs)).
		Msg("reconciliação concluída")

	return res, nil
}

// SanitizeOrderID normaliza um id de pedido para indexação: limpeza de
// controle/espaços e caixa alta (exportadores divergem na caixa).
func SanitizeOrderID(s string) string {
	return strings.ToUpper(report.Sanitize(s))
}

func excluding(columns []string, used ...string) []string {
	var out []string
	for _, c := range columns {
		skip := false
		for _, u := range used {
			if u != "" && c == u {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, c)
		}
	}
	return out
}
