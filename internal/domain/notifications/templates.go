package notifications

import (
	"bytes"
	"fmt"
	"html/template"
)

var layout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#1f2937">
<h2 style="color:#0f4c81">{{.Heading}}</h2>
{{range .Lines}}<p>{{.}}</p>
{{end}}{{if .Link}}<p><a href="{{.Link}}">Acessar o AVD</a></p>{{end}}
<p style="font-size:12px;color:#6b7280">AVD UISA - Avaliação de Desempenho</p>
</body></html>`))

type emailView struct {
	Heading string
	Lines   []string
	Link    string
}

func render(heading, link string, lines ...string) string {
	var buf bytes.Buffer
	if err := layout.Execute(&buf, emailView{Heading: heading, Lines: lines, Link: link}); err != nil {
		return heading
	}
	return buf.String()
}

func ConsensusRequired(managerID, employeeName string, selfScore, managerScore float64, link string) Intent {
	return Intent{
		EmployeeID: managerID,
		Type:       TypeConsensusRequired,
		Title:      "Consenso necessário: " + employeeName,
		Body: render("Consenso necessário", link,
			fmt.Sprintf("A avaliação de %s apresentou divergência entre autoavaliação (%.1f) e avaliação do gestor (%.1f).", employeeName, selfScore, managerScore),
			"Registre o consenso para concluir a avaliação."),
	}
}

func ConsensusReminder(managerID, employeeName string, days int, link string) Intent {
	return Intent{
		EmployeeID: managerID,
		Type:       TypeConsensusReminder,
		Title:      "Lembrete: consenso pendente de " + employeeName,
		Body: render("Consenso pendente", link,
			fmt.Sprintf("A avaliação de %s aguarda consenso há %d dias.", employeeName, days),
			"A avaliação só será finalizada após o registro do consenso."),
	}
}

func ConsensusRejected(employeeID, employeeName, reason, link string) Intent {
	return Intent{
		EmployeeID: employeeID,
		Type:       TypeConsensusRejected,
		Title:      "Sua avaliação 360° retornou para o gestor",
		Body: render("Avaliação devolvida", link,
			fmt.Sprintf("Olá, %s. O consenso da sua avaliação 360° foi rejeitado pelo gestor.", employeeName),
			"Motivo: "+reason,
			"A avaliação retornou para a etapa do gestor, que registrará novas notas."),
	}
}

func EvaluationFinalized(employeeID string, finalScore float64, band, link string) Intent {
	return Intent{
		EmployeeID: employeeID,
		Type:       TypeEvaluationFinal,
		Title:      "Sua avaliação de desempenho foi finalizada",
		Body: render("Avaliação finalizada", link,
			fmt.Sprintf("Nota final: %.1f", finalScore),
			"Classificação: "+band),
	}
}

func BonusCalculated(employeeID, cycleName string, amount float64, eligible bool, link string) Intent {
	line := fmt.Sprintf("Valor calculado: R$ %.2f", amount)
	if !eligible {
		line = "Você não atingiu os critérios de elegibilidade de metas neste ciclo."
	}
	return Intent{
		EmployeeID: employeeID,
		Type:       TypeBonusCalculated,
		Title:      "Bônus calculado - " + cycleName,
		Body:       render("Bônus calculado", link, "Ciclo: "+cycleName, line),
	}
}

func DiscrepancyAlert(recipientID, employeeName, date string, pct float64, severity, link string) Intent {
	return Intent{
		EmployeeID: recipientID,
		Type:       TypeDiscrepancyAlert,
		Title:      fmt.Sprintf("Discrepância de horas (%s): %s", severity, employeeName),
		Body: render("Discrepância de horas detectada", link,
			fmt.Sprintf("Em %s, %s registrou diferença de %.1f%% entre ponto e atividades.", date, employeeName, pct)),
	}
}

func GoalDeadline(employeeID, goalTitle, endDate string, progress float64, link string) Intent {
	return Intent{
		EmployeeID: employeeID,
		Type:       TypeGoalDeadline,
		Title:      "Meta próxima do prazo: " + goalTitle,
		Body: render("Meta próxima do prazo", link,
			fmt.Sprintf("A meta \"%s\" vence em %s e está com %.0f%% de progresso.", goalTitle, endDate, progress)),
	}
}
