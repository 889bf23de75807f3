// Package printing renders payment receipts to PDF.
//
// A ReceiptRenderer fills the receipt HTML template with a payment and its
// account, formats amounts for the configured locale and currency, and hands
// the document to a PDFRenderer. ChromedpRenderer prints through a headless
// Chrome driven over the DevTools protocol.
//
//	pdf, err := NewChromedpRenderer(&ChromedpConfig{DefaultTimeout: 30 * time.Second})
//	if err != nil {
//	    return err
//	}
//	defer pdf.Close()
//
//	receipts, err := NewReceiptRenderer(pdf, ReceiptOptions{Locale: "es-AR", Currency: "ARS"})
package printing
