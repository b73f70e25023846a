package domain

// Observation tags attached during detection and joining. The strings are the
// consolidated table's vocabulary; detectors compare against these constants
// rather than re-deriving text.
const (
	ObsDuplicate      = "Posible duplicado"
	ObsMissingTaxID   = "Falta CUIT"
	ObsMissingVendor  = "Falta acreedor"
	ObsUnclassified   = "Rubro sin clasificar"
	ObsOutlier        = "Monto atípico"
	ObsNonPositive    = "Monto cero o negativo"
	ObsAboveInflation = "Crecimiento sobre inflación"
	ObsMissingFX      = "Sin tipo de cambio"
	ObsMissingCPI     = "Sin dato de inflación"
	ObsInferredDate   = "Fecha inferida por nombre de archivo (fin de mes)"
	ObsEnrichFailed   = "Enriquecimiento CUIT fallido"
	ObsWeekend        = "Operación en fin de semana"
)

// RubricUnclassified is the rubric assigned when no classification rule
// matches. A record never carries an empty rubric.
const RubricUnclassified = "Sin clasificar"
