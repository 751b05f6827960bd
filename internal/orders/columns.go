package orders

// Input column names as exported from the purchasing system.
const (
	ColVendor        = "Vendor"
	ColVendorName    = "Vendor Name"
	ColPONumber      = "EBELN"
	ColItemNumber    = "EBELP"
	ColIssuedAt      = "BEDAT"
	ColDueAt         = "Due Date (incl. ex works time)"
	ColMaterialGroup = "MATKL"
	ColMaterialText  = "Material Text (AST or Short Text)"
	ColNetValue      = "NetOrderValue"
)

// Derived feature names, as the delivery model was trained on them.
const (
	FeatureOrderMonth = "MesPedido"
	FeatureOrderAge   = "IdadePedido"
	FeatureLeadTime   = "DiasParaEntrega"
	FeatureVendorLoad = "carga_fornecedor"
)

var RequiredColumns = []string{
	ColVendor,
	ColVendorName,
	ColPONumber,
	ColItemNumber,
	ColIssuedAt,
	ColDueAt,
	ColMaterialGroup,
	ColMaterialText,
	ColNetValue,
}
