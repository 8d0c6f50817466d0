package clinical

// SectionID identifies a body-system section of the form.
type SectionID string

const (
	SectionPosition     SectionID = "position"
	SectionAlertness    SectionID = "alertness"
	SectionNeuroSigns   SectionID = "neuroSigns"
	SectionRespiratory  SectionID = "respiratory"
	SectionVitalSigns   SectionID = "vitalSigns"
	SectionDigestive    SectionID = "digestive"
	SectionUrinary      SectionID = "urinary"
	SectionSkin         SectionID = "skin"
	SectionGeriatric    SectionID = "geriatric"
	SectionPalliative   SectionID = "palliative"
	SectionObservations SectionID = "observations"
	SectionVisits       SectionID = "visits"
)

type SectionKind int

const (
	// MultiSelect sections accept any subset of their options.
	MultiSelect SectionKind = iota
	// SingleSelect sections accept at most one option.
	SingleSelect
)

type Section struct {
	ID    SectionID
	Title string
	Kind  SectionKind
	// SpecialSheet sections refer the reader to the dedicated monitoring sheet.
	SpecialSheet  bool
	Options       []string
	Interventions []string
}

// HasInterventions reports whether the section takes a medication and an intervention list.
func (s Section) HasInterventions() bool {
	return len(s.Interventions) > 0
}

const (
	ShiftDay     = "Jour"
	ShiftEvening = "Soir"
	ShiftNight   = "Nuit"

	GenderMale   = "Masculin"
	GenderFemale = "Féminin"

	// OxygenUse is the respiratory finding that gets the O2 flow appended.
	OxygenUse = "Utilisation d’O₂"
	// AllergiesChecked is the admission checkbox that drives the allergy flag on labels.
	AllergiesChecked = "Allergies vérifiées et signalées au dossier"
)

var (
	Shifts  = []string{ShiftDay, ShiftEvening, ShiftNight}
	Genders = []string{GenderMale, GenderFemale}

	AdmissionOptions = []string{
		"Bracelet d'identification vérifié et conforme",
		AllergiesChecked,
		"Enseignement sur le fonctionnement de l'unité et l'appel infirmier effectué",
		"Évaluation initiale de la douleur effectuée",
	}
	OrientationOptions = []string{"Temps", "Lieu", "Personne"}
	AutonomyOptions    = []string{"Autonome", "Aide x 1", "Aide x 2", "Aide totale"}
	GaugeOptions       = []string{"#18", "#20", "#22", "#24"}
	DrainOptions       = []string{
		"Jackson-Pratt (JP)", "Hemovac", "Penrose", "Drain thoracique", "Pigtail",
	}
	TubeOptions = []string{
		"Sonde urinaire (Foley)", "Sonde naso-gastrique (SNG)", "Sonde de gastrostomie (PEG)", "Étui pénien",
	}
	LimbSiteOptions = []string{
		"bras droit (BD)", "bras gauche (BG)", "avant-bras droit (ABD)", "avant-bras gauche (ABG)",
	}
)

// Sections lists the body-system sections in summary order.
var Sections = []Section{
	{
		ID:    SectionPosition,
		Title: "Position du patient",
		Kind:  MultiSelect,
		Options: []string{
			"Décubitus dorsal", "Décubitus latéral", "Décubitus ventral", "Position semi-assise",
			"Assis(e) au fauteuil", "Debout",
		},
	},
	{
		ID:      SectionAlertness,
		Title:   "État d’éveil",
		Kind:    SingleSelect,
		Options: []string{"Alerte", "Somnolent", "Léthargique", "Stuporeux", "Comateux", "Non évaluable"},
	},
	{
		ID:           SectionNeuroSigns,
		Title:        "Signes neurologiques (SN)",
		Kind:         SingleSelect,
		SpecialSheet: true,
		Options:      []string{"Normal", "Anormal"},
	},
	{
		ID:    SectionRespiratory,
		Title: "Système respiratoire",
		Kind:  MultiSelect,
		Options: []string{
			"Respiration régulière", "Aucun signe de détresse", "Dyspnée au repos", "Dyspnée à l’effort",
			"Toux sèche", "Toux productive", "Sécrétions abondantes", OxygenUse,
		},
		Interventions: []string{
			"Surveillance de la saturation en O₂", "Auscultation pulmonaire",
			"Aspiration des sécrétions si besoin", "Position semi-assise",
			"Administration d'O₂ selon prescription",
		},
	},
	{
		ID:           SectionVitalSigns,
		Title:        "Signes vitaux (SV)",
		Kind:         SingleSelect,
		SpecialSheet: true,
		Options:      []string{"Normal", "Anormal"},
	},
	{
		ID:    SectionDigestive,
		Title: "Système digestif",
		Kind:  MultiSelect,
		Options: []string{
			"Appétit conservé", "Appétit diminué", "Alimentation bien tolérée", "Nausées", "Vomissements",
			"Selles normales", "Constipation", "Diarrhée",
		},
		Interventions: []string{
			"Surveillance des nausées/vomissements", "Administration d'antiémétiques si prescrits",
			"Surveillance du transit intestinal", "Encourager l'hydratation", "Conseils diététiques",
		},
	},
	{
		ID:    SectionUrinary,
		Title: "Système urinaire",
		Kind:  MultiSelect,
		Options: []string{
			"Diurèse normale", "Diurèse diminuée", "Anurie", "Urine claire", "Urine foncée", "Sonde urinaire",
			"Absence de signe d’infection",
		},
		Interventions: []string{
			"Surveillance de la diurèse", "Soins de sonde urinaire", "Encourager les apports hydriques",
			"Surveillance des signes d'infection", "Aide à la mobilisation pour la miction",
		},
	},
	{
		ID:    SectionSkin,
		Title: "Tégumentaire (peau)",
		Kind:  MultiSelect,
		Options: []string{
			"Peau intacte", "Rougeur", "Lésion/plaie", "Escarre", "Pansement propre", "Pansement souillé",
			"Changement de pansement effectué",
		},
		Interventions: []string{
			"Réfection du pansement selon protocole", "Surveillance de l'état de la plaie",
			"Prévention d'escarres", "Application de crème protectrice",
			"Évaluation de la douleur de la plaie",
		},
	},
	{
		ID:    SectionGeriatric,
		Title: "Évaluation gériatrique",
		Kind:  MultiSelect,
		Options: []string{
			"Confus(e) / désorienté(e)", "Agitation", "Apathie / Lenteur", "Marche avec aide technique",
			"Risque de chute élevé", "Alité(e)", "Aide nécessaire pour les transferts",
			"Risque de dénutrition", "Risque de déshydratation", "Aide au repas nécessaire",
			"Troubles de déglutition / Fausses routes",
		},
	},
	{
		ID:    SectionPalliative,
		Title: "Soins Palliatifs & Fin de Vie",
		Kind:  MultiSelect,
		Options: []string{
			"Douleur", "Fatigue / Asthénie", "Nausées / Vomissements", "Anxiété / Agitation",
			"Dépression / Tristesse", "Somnolence", "Perte d'appétit / Anorexie", "Dyspnée / Essoufflement",
			"Respiration irrégulière / Apnée", "Encombrement bronchique / Râles terminaux",
			"Tirage / Utilisation muscles accessoires", "Constipation", "Confusion / Délirium",
			"Bouche sèche / Soins de bouche effectués", "Altération du bien-être général",
			"Soutien psychologique / spirituel", "Présence de la famille / proches",
		},
	},
	{
		ID:    SectionObservations,
		Title: "Observations générales",
		Kind:  MultiSelect,
		Options: []string{
			"Calme et coopérant(e)", "Anxieux/Anxieuse", "Agité(e)", "Sueurs / Diaphorèse",
			"Sommeil réparateur", "Sommeil perturbé", "Mobilisation bien tolérée",
			"Bonne compréhension des soins", "Suivi médical en cours",
		},
	},
	{
		ID:      SectionVisits,
		Title:   "Visites de la famille / proches",
		Kind:    SingleSelect,
		Options: []string{"Oui", "Non", "Non applicable"},
	},
}

// SectionByID returns the section definition and whether it exists.
func SectionByID(id SectionID) (Section, bool) {
	for _, s := range Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// PainDimension is one PQRSTU line of the pain assessment.
type PainDimension struct {
	Key     string
	Label   string
	Kind    SectionKind
	Options []string
}

// PainDimensions lists the PQRSTU dimensions in summary order.
var PainDimensions = []PainDimension{
	{
		Key:     "p",
		Label:   "P - Provocation / Palliation",
		Kind:    MultiSelect,
		Options: []string{"Mouvement", "Repos", "Pression", "Changement de position", "Médication"},
	},
	{
		Key:     "q",
		Label:   "Q - Qualité",
		Kind:    MultiSelect,
		Options: []string{"Brûlure", "Lancinante", "Sourde", "Écrasement", "Coup de poignard", "Picotement"},
	},
	{
		Key:     "r",
		Label:   "R - Région / Rayonnement",
		Kind:    MultiSelect,
		Options: []string{"Localisée", "Irradiation", "Diffuse"},
	},
	{
		Key:     "s",
		Label:   "S - Sévérité / Intensité",
		Kind:    SingleSelect,
		Options: []string{"Légère (1-3/10)", "Modérée (4-6/10)", "Sévère (7-10/10)", "Non évaluable"},
	},
	{
		Key:     "t",
		Label:   "T - Temps",
		Kind:    MultiSelect,
		Options: []string{"Continue", "Intermittente", "Apparition brutale", "Apparition progressive"},
	},
	{
		Key:     "u",
		Label:   "U - Symptômes associés",
		Kind:    MultiSelect,
		Options: []string{"Nausées", "Vertiges", "Sueurs", "Anxiété", "Fatigue", "Aucun"},
	},
}

// Values returns the values of the dimension in p. The severity is returned as a one element
// slice when set.
func (d PainDimension) Values(p Pain) []string {
	switch d.Key {
	case "p":
		return p.P
	case "q":
		return p.Q
	case "r":
		return p.R
	case "s":
		if p.S == "" {
			return nil
		}
		return []string{p.S}
	case "t":
		return p.T
	case "u":
		return p.U
	}
	return nil
}

var PainNonPharmaOptions = []string{
	"Installation dans une position de confort",
	"Application de chaleur/froid",
	"Techniques de relaxation/distraction",
	"Soutien psychologique/écoute active",
	"Mobilisation douce",
	"Massage/friction",
}
