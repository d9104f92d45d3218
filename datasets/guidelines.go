package datasets

import "github.com/giygas/formulary-browser/datasets/entities"

const (
	nagHome     = "https://sites.google.com/moh.gov.my/nag/home"
	nagBase     = "https://sites.google.com/moh.gov.my/nag/contents"
	adultBase   = nagBase + "/section-a-adult"
	paedsBase   = nagBase + "/section-b-paediatrics"
	primaryBase = nagBase + "/section-c-clinical-pathways-in-primary-care"
)

// DefaultGuidelines is the National Antimicrobial Guideline index used when
// the data directory has no guidelines.yaml.
func DefaultGuidelines() entities.Guidelines {
	return entities.Guidelines{
		Home: nagHome,
		Sections: []entities.GuidelineSection{
			{
				Key:   "adult",
				Title: "Section A: Adult",
				Links: []entities.GuidelineLink{
					{ID: "A1", Title: "Cardiovascular Infections", URL: adultBase + "/a1-cardiovascular-infections"},
					{ID: "A2", Title: "Central Nervous Infections", URL: adultBase + "/a2-central-nervous-infections"},
					{ID: "A3", Title: "Chemoprophylaxis", URL: adultBase + "/a3-chemoprophylaxis"},
					{ID: "A4", Title: "Gastrointestinal Infections", URL: adultBase + "/a4-gastrointestinal-infections"},
					{ID: "A5", Title: "Immunocompromised Patients", URL: adultBase + "/a5-infections-in-immunocompromised-patients"},
					{ID: "A6", Title: "Obs & Gynae Infections", URL: adultBase + "/a6-obstetrics-gyneacological-infections"},
					{ID: "A7", Title: "Ocular Infections", URL: adultBase + "/a7-ocular-infections"},
					{ID: "A8", Title: "Oral / Dental Infections", URL: adultBase + "/a8-oral-dental-infections"},
					{ID: "A9", Title: "Orthopaedic Infections", URL: adultBase + "/a9-orthopaedic-infections"},
					{ID: "A10", Title: "ORL Infections", URL: adultBase + "/a10-otorhinolaryngology-infections"},
					{ID: "A11", Title: "Respiratory Infections", URL: adultBase + "/a11-respiratory-infections"},
					{ID: "A12", Title: "Sepsis", URL: adultBase + "/a12-sepsis"},
					{ID: "A13", Title: "STIs", URL: adultBase + "/a13-sexually-transmitted-infections"},
					{ID: "A14", Title: "Skin & Soft Tissue", URL: adultBase + "/a14-skin-soft-tissue-infections"},
					{ID: "A15", Title: "Trauma Related", URL: adultBase + "/a15-trauma-related-infections"},
					{ID: "A16", Title: "Tropical Infections", URL: adultBase + "/a16-tropical-infections"},
					{ID: "A17", Title: "Urinary Tract Infections", URL: adultBase + "/a17-urinary-tract-infections"},
				},
			},
			{
				Key:   "paeds",
				Title: "Section B: Paediatrics",
				Links: []entities.GuidelineLink{
					{ID: "B1", Title: "Cardiovascular", URL: paedsBase + "/b1-cardiovascular-infections"},
					{ID: "B2", Title: "CNS Infections", URL: paedsBase + "/b2-central-nervous-infections"},
					{ID: "B6", Title: "Neonatal Infections", URL: paedsBase + "/b6-neonatal-infections"},
					{ID: "B10", Title: "Respiratory Infections", URL: paedsBase + "/b10-respiratory-infections"},
					{ID: "B13", Title: "Urinary Tract Infections", URL: paedsBase + "/b13-urinary-tract-infections"},
					{ID: "B14", Title: "Vascular Infections", URL: paedsBase + "/b14-vascular-infections"},
				},
			},
			{
				Key:   "primary",
				Title: "Section C: Primary Care",
				Links: []entities.GuidelineLink{
					{ID: "C1", Title: "Acute Bronchitis/Pneumonia", URL: primaryBase + "/c1-acute-bronchitis-and-pneumonia"},
					{ID: "C2", Title: "Acute Otitis Media", URL: primaryBase + "/c2-acute-otitis-media"},
					{ID: "C3", Title: "Acute Pharyngitis", URL: primaryBase + "/c3-acute-pharyngitis"},
					{ID: "C4", Title: "Acute Rhinosinusitis", URL: primaryBase + "/c4-acute-rhinosinusitis"},
					{ID: "C5", Title: "Acute Gastroenteritis", URL: primaryBase + "/c5-acute-gastroenteritis"},
					{ID: "C7", Title: "UTI (Non-Pregnancy)", URL: primaryBase + "/c7-urinary-tract-infection-in-non-pregnancy"},
				},
			},
		},
		Documents: []entities.GuidelineLink{
			{ID: "paediatric-protocols", Title: "Paediatric Protocols 5th Edition", URL: "/Paediatric Protocols 5th Edition PDF_compressed.pdf"},
		},
	}
}
