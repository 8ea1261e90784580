package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type demo struct{}

// NewDemo creates an offline Generator that fills fixed Portuguese templates
// from the context fields. It needs no provider and is deterministic, which
// makes it suitable for local runs and demonstrations.
func NewDemo() Generator {
	return demo{}
}

var demoTemplates = map[string]string{
	"introduction":      "Prezados executivos da %[1]s, é um prazer apresentar nossa proposta que transformará a forma como vocês operam no mercado de %[2]s. Nossa solução foi desenvolvida para empresas visionárias como a sua.",
	"problem_statement": "Sabemos que empresas do setor de %[2]s enfrentam desafios únicos: processos manuais que consomem tempo, falta de integração entre sistemas e dificuldade para escalar operações. Estes problemas impactam diretamente a produtividade e a competitividade da %[1]s.",
	"solution_overview": "Nossa plataforma oferece uma solução completa e integrada que automatiza processos críticos, centraliza informações e fornece indicadores em tempo real, adaptando-se às necessidades da %[1]s no setor de %[2]s.",
	"benefits":          "Com nossa solução, a %[1]s terá menos tempo gasto em processamento, mais produtividade da equipe, redução de custos operacionais e clientes mais satisfeitos.",
	"social_proof":      "Já ajudamos diversas empresas do setor de %[2]s a transformar suas operações. Empresas similares à %[1]s viram resultados consistentes em poucos meses.",
	"call_to_action":    "Convidamos a %[1]s para uma demonstração personalizada na próxima semana, onde mostraremos como nossa solução resolve seus desafios específicos.",
}

func (demo) Generate(ctx context.Context, _ string, data map[string]string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	company := fallback(data[KeyCompanyName], "sua empresa")
	industry := fallback(data[KeyIndustry], "seu setor")
	stage := data[KeyStage]

	if stage == "rebuttal" {
		return demoRebuttal(company, data[KeyPainPoint])
	}

	tmpl, ok := demoTemplates[stage]
	if !ok {
		return "", fmt.Errorf("%w: demo has no template for stage %q", ErrGeneration, stage)
	}
	return fmt.Sprintf(tmpl, company, industry), nil
}

const demoConfidence = 0.8

func demoRebuttal(company, painPoint string) (string, error) {
	painPoint = strings.TrimRight(strings.TrimSpace(painPoint), ".!?;")
	objection := fmt.Sprintf("Não sei se isso resolve o nosso problema: %s.", strings.ToLower(painPoint))
	rebuttal := fmt.Sprintf(
		"Entendo a preocupação. Esse é exatamente o tipo de desafio que tratamos com empresas como a %s, e podemos mostrar em uma demonstração curta como ele é resolvido no dia a dia.",
		company,
	)
	resp := map[string]any{
		"objection":        objection,
		"rebuttal":         rebuttal,
		"confidence_score": demoConfidence,
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	return string(data), nil
}

func fallback(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
