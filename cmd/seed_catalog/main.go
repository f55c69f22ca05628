// seed_catalog genera un script SQL para poblar bodegas, editoriales, autores, productos y stock
// a partir de un catálogo XML (UTF-8 o ISO-8859-1).
//
// Uso: go run ./cmd/seed_catalog [ruta/catalogo.xml] [salida.sql]
// Por defecto lee catalogo.xml del directorio actual y escribe seeds/catalog_seed.sql en la raíz del módulo.
// El script es idempotente: se puede aplicar varias veces sobre la misma base.
package main

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type catalogo struct {
	Bodegas     []bodega    `xml:"bodega"`
	Editoriales []editorial `xml:"editorial"`
}

type bodega struct {
	Nombre string `xml:"nombre,attr"`
}

type editorial struct {
	Nombre    string     `xml:"nombre,attr"`
	Productos []producto `xml:"producto"`
}

type producto struct {
	Tipo        string   `xml:"tipo,attr"`
	Titulo      string   `xml:"titulo,attr"`
	Bodega      string   `xml:"bodega,attr"`
	Cantidad    int64    `xml:"cantidad,attr"`
	Descripcion string   `xml:"descripcion"`
	Autores     []string `xml:"autor"`
}

var tiposValidos = map[string]bool{"libro": true, "revista": true, "enciclopedia": true}

func main() {
	xmlPath := "catalogo.xml"
	if len(os.Args) > 1 {
		xmlPath = os.Args[1]
	}
	outPath := filepath.Join(findModuleRoot(), "seeds", "catalog_seed.sql")
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	f, err := os.Open(xmlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir XML: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	cat, err := parseCatalog(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar XML: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Crear directorio: %v\n", err)
		os.Exit(1)
	}
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	stats, err := writeSQL(w, cat)
	if err == nil {
		err = w.Flush()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d bodegas, %d editoriales, %d productos (%d descartados)\n",
		outPath, stats.bodegas, stats.editoriales, stats.productos, stats.descartados)
}

// parseCatalog decodifica el XML. Los catálogos exportados en Latin-1 se convierten a UTF-8.
func parseCatalog(r io.Reader) (*catalogo, error) {
	var c catalogo
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		switch strings.ToUpper(charset) {
		case "ISO-8859-1", "ISO8859-1", "LATIN1":
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		case "WINDOWS-1252", "CP1252":
			return transform.NewReader(input, charmap.Windows1252.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

type seedStats struct {
	bodegas, editoriales, productos, descartados int
}

// writeSQL escribe el script. Bodegas y editoriales se insertan por nombre único; autores y
// productos solo si no existe uno igual. Los productos con tipo desconocido se descartan.
func writeSQL(w io.Writer, c *catalogo) (seedStats, error) {
	var stats seedStats
	var b strings.Builder

	b.WriteString("-- Catálogo inicial de bodegas-api\n")
	b.WriteString("-- Generado por cmd/seed_catalog\n\n")
	b.WriteString("BEGIN;\n\n")

	// Bodegas declaradas y las referenciadas por productos.
	bodegas := map[string]bool{}
	var orden []string
	addBodega := func(name string) {
		if name != "" && !bodegas[name] {
			bodegas[name] = true
			orden = append(orden, name)
		}
	}
	for _, bo := range c.Bodegas {
		addBodega(clean(bo.Nombre))
	}
	for _, ed := range c.Editoriales {
		for _, p := range ed.Productos {
			addBodega(clean(p.Bodega))
		}
	}
	if len(orden) > 0 {
		b.WriteString("-- 1. Bodegas\n")
		for _, name := range orden {
			fmt.Fprintf(&b, "INSERT INTO warehouses (name) VALUES ('%s') ON CONFLICT (name) DO NOTHING;\n", escapeSQL(name))
		}
		b.WriteString("\n")
		stats.bodegas = len(orden)
	}

	b.WriteString("-- 2. Editoriales, autores y productos\n")
	for _, ed := range c.Editoriales {
		pub := clean(ed.Nombre)
		if pub == "" {
			stats.descartados += len(ed.Productos)
			continue
		}
		stats.editoriales++
		fmt.Fprintf(&b, "INSERT INTO publishers (name) VALUES ('%s') ON CONFLICT (name) DO NOTHING;\n", escapeSQL(pub))

		for _, p := range ed.Productos {
			tipo := strings.ToLower(clean(p.Tipo))
			titulo := clean(p.Titulo)
			if !tiposValidos[tipo] || titulo == "" || p.Cantidad < 0 {
				stats.descartados++
				continue
			}
			stats.productos++
			writeProduct(&b, pub, tipo, titulo, clean(p.Descripcion), clean(p.Bodega), p.Cantidad, p.Autores)
		}
	}
	b.WriteString("\nCOMMIT;\n")

	_, err := io.WriteString(w, b.String())
	return stats, err
}

func writeProduct(b *strings.Builder, pub, tipo, titulo, desc, home string, qty int64, autores []string) {
	pubSQL, titleSQL := escapeSQL(pub), escapeSQL(titulo)
	product := fmt.Sprintf("(SELECT p.id FROM products p JOIN publishers e ON e.id = p.publisher_id WHERE p.title = '%s' AND e.name = '%s' ORDER BY p.id LIMIT 1)",
		titleSQL, pubSQL)

	homeSQL := "NULL"
	if home != "" {
		homeSQL = fmt.Sprintf("(SELECT id FROM warehouses WHERE name = '%s')", escapeSQL(home))
	}
	fmt.Fprintf(b, "INSERT INTO products (type, title, description, publisher_id, home_warehouse_id)\n")
	fmt.Fprintf(b, "SELECT '%s', '%s', '%s', e.id, %s FROM publishers e\n", tipo, titleSQL, escapeSQL(desc), homeSQL)
	fmt.Fprintf(b, "WHERE e.name = '%s' AND NOT EXISTS (\n", pubSQL)
	fmt.Fprintf(b, "  SELECT 1 FROM products p WHERE p.title = '%s' AND p.publisher_id = e.id);\n", titleSQL)

	for _, a := range autores {
		name := clean(a)
		if name == "" {
			continue
		}
		nameSQL := escapeSQL(name)
		fmt.Fprintf(b, "INSERT INTO authors (name) SELECT '%s' WHERE NOT EXISTS (SELECT 1 FROM authors WHERE name = '%s');\n", nameSQL, nameSQL)
		fmt.Fprintf(b, "INSERT INTO product_authors (product_id, author_id)\n")
		fmt.Fprintf(b, "SELECT %s, (SELECT id FROM authors WHERE name = '%s' ORDER BY id LIMIT 1)\n", product, nameSQL)
		b.WriteString("ON CONFLICT DO NOTHING;\n")
	}

	if home != "" {
		fmt.Fprintf(b, "INSERT INTO stock_levels (product_id, warehouse_id, quantity)\n")
		fmt.Fprintf(b, "SELECT %s, (SELECT id FROM warehouses WHERE name = '%s'), %d\n", product, escapeSQL(home), qty)
		b.WriteString("ON CONFLICT (product_id, warehouse_id) DO NOTHING;\n")
	}
}

// clean recorta espacios y normaliza a NFC, igual que los nombres que entran por la API.
func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
