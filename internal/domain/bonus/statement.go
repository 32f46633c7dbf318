package bonus

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Statement renders the bonus statement of a calculation as PDF.
func (s *Service) Statement(ctx context.Context, id string) ([]byte, error) {
	calc, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := s.cycles.Get(ctx, calc.CycleID)
	if err != nil {
		return nil, err
	}
	return RenderStatement(calc, c.Name)
}

func RenderStatement(calc Calculation, cycleName string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr("Demonstrativo de Bônus"))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		"Colaborador: " + calc.EmployeeName,
		"Ciclo: " + cycleName,
		fmt.Sprintf("Nota final: %.2f", calc.FinalScore),
		"Faixa de desempenho: " + calc.PerformanceBand,
		fmt.Sprintf("Salário base: R$ %.2f", calc.BaseSalary),
		fmt.Sprintf("Multiplicador aplicado: %.2f", calc.AppliedMultiplier),
		fmt.Sprintf("Metas elegíveis concluídas: %d de %d", calc.GoalsCompleted, calc.GoalsTotal),
	}
	for _, line := range lines {
		pdf.Cell(0, 8, tr(line))
		pdf.Ln(7)
	}
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 13)
	total := fmt.Sprintf("Valor do bônus: R$ %.2f", calc.Amount)
	if !calc.Eligible {
		total = "Não elegível: critérios de metas não atingidos"
	}
	pdf.Cell(0, 8, tr(total))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	status := "Status: " + calc.Status
	if calc.PaidAt != nil {
		status += " em " + calc.PaidAt.Format("02/01/2006")
	}
	pdf.Cell(0, 6, tr(status))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
