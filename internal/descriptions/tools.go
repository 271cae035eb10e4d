// Package descriptions holds the long-form MCP tool descriptions shown to
// clients when they list the declaration tools.
package descriptions

import "sort"

// Tool names
const (
	GeneratePDF          = "pe_generate_pdf"
	ComputeTotals        = "pe_compute_totals"
	CalculatePresumption = "pe_calculate_presumption"
	TemplateFields       = "pe_template_fields"
	SaveDraft            = "pe_save_draft"
	ListDrafts           = "pe_list_drafts"
	LoadDraft            = "pe_load_draft"
	DeleteDraft          = "pe_delete_draft"
)

const (
	// Document Tools
	GeneratePDFDescription = `Fill the Posesión Efectiva form for a case and write the flattened PDF to the output directory.

**When to use:** The case is complete enough to print: decedent, heirs and inventory have been gathered and the applicant wants the filing document.

**Why it's useful:** Maps every section onto the official form fields, formats amounts, dates and RUTs the way the registry expects, and places entries beyond the form's slots on extra pages.

**Examples:**
• First filing: "Generate the declaration for the case of Juan Pérez Soto"
• Reprint with a new heir: "Add María as daughter and generate the PDF again"

**Common workflows:**
1. Draft review: pe_load_draft → edit the case → pe_generate_pdf
2. Pre-flight: pe_compute_totals → check the overflow report → pe_generate_pdf

**Best practices:** The response lists template field names that could not be written; a non-empty list usually means the template revision changed, check with pe_template_fields.`

	ComputeTotalsDescription = `Compute the category totals, total assets and net estate of a case without rendering a document.

**When to use:** Checking the numbers before generating, or answering "how much is the estate worth" during an interview.

**Why it's useful:** Uses the same arithmetic as the generated form, including the household-goods presumption, and reports which lists exceed the slots the form offers.

**Examples:**
• "What is the net estate if we add the mortgage of 30 million?"
• "Will the five vehicles fit on the form?"

**Best practices:** Run it after every inventory change; overflowing entries go to extra pages under the configured strategy.`

	CalculatePresumptionDescription = `Compute the household-goods presumption from the appraisal of the first real-estate entry.

**When to use:** The heirs choose the 20% presumption instead of listing household goods item by item.

**Why it's useful:** Applies the legal rate with the same half-up rounding the form uses.

**Examples:**
• "The house is appraised at 85.000.000, what is the presumed household value?"

**Best practices:** The value must be the fiscal appraisal of the first real-estate entry, not the sum of every property.`

	TemplateFieldsDescription = `List the template's form fields and the field names the service writes that the template lacks.

**When to use:** After replacing the template PDF, or when generated documents come out with blank sections.

**Why it's useful:** A missing name means a value is silently not printed; this report shows every such name at once.

**Best practices:** A complete template reports no missing text fields and no missing checkboxes.`

	// Draft Tools
	SaveDraftDescription = `Save a case as a JSON draft so the interview can continue later.

**When to use:** Partial cases, or any case the applicant wants to keep before generating.

**Examples:**
• "Save this case as familia Pérez"

**Best practices:** The label becomes part of the file name; without one the name is built from the decedent's name.`

	ListDraftsDescription = `List stored drafts, most recent first, with their file name, decedent and creation time.

**When to use:** Picking up earlier work, or before pe_load_draft or pe_delete_draft.`

	LoadDraftDescription = `Return the stored JSON of a draft exactly as it was saved.

**When to use:** Resuming a saved case; pass the file name returned by pe_list_drafts.`

	DeleteDraftDescription = `Delete a stored draft.

**When to use:** The case has been filed or the draft was saved by mistake. Deletion cannot be undone.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	GeneratePDF:          GeneratePDFDescription,
	ComputeTotals:        ComputeTotalsDescription,
	CalculatePresumption: CalculatePresumptionDescription,
	TemplateFields:       TemplateFieldsDescription,
	SaveDraft:            SaveDraftDescription,
	ListDrafts:           ListDraftsDescription,
	LoadDraft:            LoadDraftDescription,
	DeleteDraft:          DeleteDraftDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the tool names in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
