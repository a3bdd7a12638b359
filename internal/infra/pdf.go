package infra

// pdf.go — remito (delivery note) generation using go-pdf/fpdf.
// Remitos are rendered by the async remito worker after a bulk
// "generar documentos" operation commits; rendering is best-effort and never
// touches the order/stock transaction.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mauropillox/chorilocal-sub000/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateRemitoPDF writes an A5 remito for a pedido to
// storagePath/remito_{id}.pdf and returns the absolute path.
func GenerateRemitoPDF(pedido *model.Pedido, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("remito_%d.pdf", pedido.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Chorilocal — Remito de entrega", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Pedido #%d", pedido.ID), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, time.Now().Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	if pedido.Cliente != nil {
		pdf.CellFormat(contentW, 5, "Cliente: "+pedido.Cliente.Nombre, "", 1, "L", false, 0, "")
		if pedido.Cliente.Direccion != "" {
			pdf.CellFormat(contentW, 5, "Direccion: "+pedido.Cliente.Direccion, "", 1, "L", false, 0, "")
		}
	}
	if pedido.Repartidor != nil {
		pdf.CellFormat(contentW, 5, "Repartidor: "+*pedido.Repartidor, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// Item table
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW*0.6, 6, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.25, 6, "Cantidad", "B", 0, "R", false, 0, "")
	pdf.CellFormat(contentW*0.15, 6, "Tipo", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range pedido.Items {
		nombre := fmt.Sprintf("producto %d", item.ProductoID)
		if item.Producto != nil {
			nombre = item.Producto.Nombre
		}
		pdf.CellFormat(contentW*0.6, 6, nombre, "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.25, 6, item.Cantidad.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(contentW*0.15, 6, item.Tipo, "", 1, "R", false, 0, "")
	}

	if pedido.Notas != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 4, "Notas: "+pedido.Notas, "", "L", false)
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW/2, 5, "Firma repartidor: ____________", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 5, "Firma cliente: ____________", "", 1, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write remito: %w", err)
	}
	return filePath, nil
}
