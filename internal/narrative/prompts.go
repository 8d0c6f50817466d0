package narrative

import (
	"fmt"
	"strings"

	"github.com/myrjola/chartnote/internal/clinical"
)

const baseInstructions = `RÔLE : Tu es un infirmier ou une infirmière rédigeant une note d'évolution pour le dossier d'un patient, conformément aux standards du système de santé québécois.
INSTRUCTIONS GÉNÉRALES :
- Accorde IMPÉRATIVEMENT le genre du texte (pronoms, adjectifs) en fonction du "Genre du patient" spécifié dans les données.
- Rédige dans un style professionnel, clair et concis. Utilise des abréviations médicales courantes si pertinent.
- Réponds IMPÉRATIVEMENT au format JSON en respectant le schéma fourni.
- N'inclus JAMAIS l'heure ou la date. Retourne UNIQUEMENT le contenu narratif.
`

const styleInstructions = `
APPRENTISSAGE DE STYLE PRIORITAIRE :
Ceci est l'instruction la plus importante. Tu dois analyser attentivement les "EXEMPLES DE STYLE" fournis ci-dessous. Ton objectif est d'imiter et d'adopter ce style (le ton, le vocabulaire, les abréviations, la structure des phrases, et le niveau de détail) dans la nouvelle entrée que tu vas rédiger. La cohérence avec ces exemples est primordiale.

---
EXEMPLES DE STYLE (modèle à imiter impérativement) :
"%s"
---
`

const appendTask = `
TÂCHE : Ajouter une nouvelle entrée à une note d'évolution existante.

INSTRUCTIONS SPÉCIFIQUES À L'AJOUT :
1.  **APPRENTISSAGE DE STYLE SECONDAIRE** : Si les "EXEMPLES DE STYLE" ne sont pas fournis, analyse les "ENTRÉES PRÉCÉDENTES" pour en déduire un style. Sinon, le style des "EXEMPLES DE STYLE" a la priorité absolue.
2.  **RÉDACTION** : Rédige un nouveau paragraphe narratif à partir des "NOUVELLES DONNÉES CLINIQUES", en appliquant le style appris.
3.  **RETOUR** : Retourne UNIQUEMENT le contenu narratif de la nouvelle entrée dans le champ JSON "content".

---
ENTRÉES PRÉCÉDENTES (style secondaire à suivre si pas d'exemples prioritaires) :
"%s"

NOUVELLES DONNÉES CLINIQUES :
%s
---`

const firstEntryTask = `
TÂCHE : Rédiger la première entrée d'une note d'évolution.

INSTRUCTIONS SPÉCIFIQUES À LA CRÉATION :
1.  Rédige la note narrative à partir des "DONNÉES CLINIQUES".
2.  Retourne UNIQUEMENT le contenu narratif de la note dans le champ JSON "content".

---
DONNÉES CLINIQUES :
%s
---`

const styleTestPrompt = `RÔLE: Tu es un expert en stylistique. Ta mission est de reformuler une phrase pour qu'elle corresponde parfaitement au style d'écriture d'un infirmier/infirmière, en te basant sur les exemples fournis.

INSTRUCTIONS:
1.  Analyse attentivement les "EXEMPLES DE STYLE" pour comprendre le ton, le vocabulaire, les abréviations, et la structure.
2.  Prends la "PHRASE À REFORMULER" et réécris-la en imitant ce style de la manière la plus fidèle possible.
3.  Ta réponse doit contenir UNIQUEMENT le texte reformulé. N'ajoute aucune explication, aucun commentaire, ni aucune phrase d'introduction.

---
EXEMPLES DE STYLE (modèle à imiter):
"%s"
---
PHRASE À REFORMULER:
"%s"
---
`

const shiftReportPrompt = `RÔLE : Tu es un(e) infirmier(ère) expérimenté(e) qui prépare un rapport de relève concis et professionnel pour le prochain quart de travail.
TÂCHE : Rédige un rapport de synthèse pour le quart de "%s", basé sur les notes d'évolution de plusieurs patients fournies ci-dessous.

INSTRUCTIONS :
1. Structure le rapport par patient (ex: "Ch. 101", "Ch. 102", etc.).
2. Pour chaque patient, extrais et résume les événements, changements d'état, interventions clés et suivis importants qui se sont produits.
3. Focalise-toi sur les informations pertinentes pour la continuité des soins. Ignore les détails routiniers si l'état est stable.
4. Sois clair, concis et utilise un langage infirmier professionnel.
5. Si les notes d'un patient sont vides ou ne contiennent pas d'informations pertinentes, mentionne simplement que l'état est stable ou qu'il n'y a rien de particulier à signaler.
6. Le rapport doit être une synthèse globale, pas une simple copie des notes. Il doit donner une vue d'ensemble rapide de l'état de l'unité.

---
NOTES DES PATIENTS :
%s
---
`

// EntryLines renders entries as "HH:MM - content" lines.
func EntryLines(entries []clinical.NoteEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.Timestamp+" - "+e.Content)
	}
	return strings.Join(lines, "\n")
}

// NotePrompt builds the generation prompt. The exemplar block is present only when the
// trimmed exemplar is non-empty, and previous entries switch the task to appending.
func NotePrompt(clinicalSummary string, entries []clinical.NoteEntry, exemplar string) string {
	var b strings.Builder
	b.WriteString(baseInstructions)
	if exemplar = strings.TrimSpace(exemplar); exemplar != "" {
		fmt.Fprintf(&b, styleInstructions, exemplar)
	}
	if len(entries) > 0 {
		fmt.Fprintf(&b, appendTask, EntryLines(entries), clinicalSummary)
	} else {
		fmt.Fprintf(&b, firstEntryTask, clinicalSummary)
	}
	return b.String()
}

// StyleTestPrompt asks for input reformulated in the exemplar's style.
func StyleTestPrompt(exemplar, input string) string {
	return fmt.Sprintf(styleTestPrompt, strings.TrimSpace(exemplar), strings.TrimSpace(input))
}

// PatientNotes is the note history of one patient for the shift report.
type PatientNotes struct {
	ID      string
	Entries []clinical.NoteEntry
}

// ShiftReportPrompt asks for a hand-off synthesis of every patient's notes.
func ShiftReportPrompt(shift string, patients []PatientNotes) string {
	blocks := make([]string, 0, len(patients))
	for _, p := range patients {
		notes := EntryLines(p.Entries)
		if notes == "" {
			notes = "Aucune note pour ce patient."
		}
		blocks = append(blocks, fmt.Sprintf("Patient %s:\n%s", p.ID, notes))
	}
	return fmt.Sprintf(shiftReportPrompt, shift, strings.Join(blocks, "\n\n---\n\n"))
}
