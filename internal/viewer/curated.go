package viewer

// DefaultCuratedNodeTypes is the built-in curated node type allow-list.
var DefaultCuratedNodeTypes = []string{
	"PO", "KS", "AS", "ISVS", "Projekt", "InfraSluzba", "Agenda", "ZS",
}

// DefaultCuratedRelations is the built-in curated relation allow-list.
var DefaultCuratedRelations = []string{
	"PO_je_gestor_KS",
	"PO_je_gestor_ISVS",
	"PO_je_gestor_AS",
	"ISVS_realizuje_AS",
	"KS_sluzi_AS",
	"Projekt_realizuje_ISVS",
	"PO_je_vlastnik_Projekt",
	"ISVS_patri_pod_ISVS",
}
