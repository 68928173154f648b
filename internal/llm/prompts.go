package llm

// Invoice extraction prompts

const SystemPromptInvoiceExtractor = `You are an expert invoice data extractor specializing in South African fuel and trade invoices.

Your task is to extract structured data from invoice text. The text was machine-extracted from a PDF, so columns may run together and line items may appear in several layouts:
- General tabular lines: item code, description, quantity, price, tax, total
- Express fuel lines: a product code such as "LSD : EL" or "PETROL : EL", a description, then quantity, price and total (no tax column)
- Legacy fuel lines: a fuel description followed by three numbers whose order varies

Amounts are in Rand and may use comma thousands separators (e.g. 483,710.19).
Extract ALL line items you can find. If a field is not present, omit it from the output.
Always output valid JSON that matches the specified schema.
Dates keep the printed DD-MM-YYYY format. Invoice references look like INV followed by digits.`

const UserPromptTextExtraction = `Extract invoice data from the following text:

---
%s
---

Output JSON with this structure:
{
  "date": "DD-MM-YYYY",
  "reference": "INV00987",
  "total_excl": 1234.56,
  "total_incl": 1407.40,
  "items": [
    {
      "item_code": "LSD : EL",
      "description": "LOW SULPHUR DIESEL : EL",
      "quantity": 20049.00,
      "unit": "",
      "price": 24.1264,
      "tax": 0,
      "total": 483710.19
    }
  ]
}`

const UserPromptOCRCorrection = `The following is machine-extracted text from a scanned invoice. It may contain errors such as merged columns, broken lines or misread digits.

Text:
---
%s
---

Please:
1. Correct any obvious extraction errors (especially in amounts and the INV reference)
2. Extract the structured invoice data

Output JSON with the same structure as before.`
