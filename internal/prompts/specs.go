package prompts

const sectionSpec = `Formato da resposta:
- Apenas o texto da seção, sem título, sem marcadores de markdown e sem aspas
- Extensão: %s
- Use somente as informações fornecidas no contexto; não invente números específicos do cliente`

const rebuttalSpec = `Responda com um objeto JSON exatamente nesta estrutura:

{
  "objection": "<objeção na voz do cliente>",
  "rebuttal": "<resposta persuasiva do vendedor>",
  "category": "<price|timing|authority|need|other>",
  "confidence_score": <número entre 0 e 1>
}

Restrições:
- objection: uma frase, em primeira pessoa, como o cliente diria
- rebuttal: de duas a quatro frases, reconhecendo a preocupação antes de respondê-la
- category: price para preço ou orçamento, timing para prazo ou momento, authority para aprovação ou decisão, need para necessidade ou solução atual, other nos demais casos
- confidence_score: a confiança de que a resposta supera a objeção, de 0 a 1
- Sempre responda com JSON válido, sem blocos de código`

// sectionLength is the default length clause. The call to action varies by
// project type; see ctaLength.
const sectionLength = "de duas a quatro frases"

var ctaLength = map[string]string{
	"elevator_pitch":     "uma única frase curta",
	"proposta_comercial": "de três a cinco frases",
}

const ctaDefaultLength = "de duas a três frases"

// Spec returns the output specification for a stage. variant selects the
// call-to-action length by project type and is ignored for other stages.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage, variant string) (string, error) {
	switch stage {
	case StageRebuttal:
		return rebuttalSpec, nil
	case StageCallToAction:
		length, ok := ctaLength[variant]
		if !ok {
			length = ctaDefaultLength
		}
		return formatSection(length), nil
	}

	if _, ok := instructions[stage]; !ok {
		return "", ErrInvalidStage
	}
	return formatSection(sectionLength), nil
}
