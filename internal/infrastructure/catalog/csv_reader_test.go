package catalog_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/catalog"
)

func TestReadProducts_ParseaColumnasYDefectos(t *testing.T) {
	csv := "id,branch_id,sku,name,current_stock,maximum_stock,reorder_level,is_active\n" +
		"p-1,br-1,FIL-001,Filtro de aceite,10,50,5,1\n" +
		"p-2,br-1,COR-002,Correa,0,,2,no\n"

	list, err := catalog.ReadProducts(strings.NewReader(csv), "utf-8")
	require.NoError(t, err)
	require.Len(t, list, 2)

	p := list[0]
	assert.Equal(t, "FIL-001", p.SKU)
	assert.Equal(t, "PCS", p.Unit, "unidad por defecto")
	assert.Equal(t, "10", p.CurrentStock.String())
	require.NotNil(t, p.MaximumStock)
	assert.Equal(t, "50", p.MaximumStock.String())
	assert.True(t, p.IsActive)

	assert.Nil(t, list[1].MaximumStock, "vacío = sin límite")
	assert.False(t, list[1].IsActive)
}

func TestReadProducts_Latin1YPuntoYComa(t *testing.T) {
	// "Rodamiento cónico" en ISO-8859-1: ó = 0xF3
	var buf bytes.Buffer
	buf.WriteString("id;sku;name;current_stock\n")
	buf.Write([]byte("p-9;ROD-9;Rodamiento c\xf3nico;3\n"))

	list, err := catalog.ReadProducts(&buf, "iso-8859-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Rodamiento cónico", list[0].Name)
}

func TestReadProducts_Errores(t *testing.T) {
	cases := map[string]string{
		"sin sku":          "id,sku\np-1,\n",
		"decimal inválido": "id,sku,current_stock\np-1,A,diez\n",
		"stock negativo":   "id,sku,current_stock\np-1,A,-1\n",
		"sin columna id":   "sku\nA\n",
	}
	for name, csv := range cases {
		_, err := catalog.ReadProducts(strings.NewReader(csv), "")
		assert.Error(t, err, name)
	}
}

func TestReadSuppliers_ConBOM(t *testing.T) {
	csv := "\ufeffid,code,name,is_active\nsup-1,S001,Repuestos Andinos,true\n"
	list, err := catalog.ReadSuppliers(strings.NewReader(csv), "utf8")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "S001", list[0].Code)
	assert.True(t, list[0].IsActive)
}

func TestDecoder_CharsetNoSoportado(t *testing.T) {
	_, err := catalog.Decoder(strings.NewReader(""), "ebcdic")
	assert.Error(t, err)
}

func TestReadSuppliers_ArchivoVacio(t *testing.T) {
	list, err := catalog.ReadSuppliers(strings.NewReader(""), "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLoadFiles_LeeAmbosArchivos(t *testing.T) {
	dir := t.TempDir()
	products := filepath.Join(dir, "productos.csv")
	suppliers := filepath.Join(dir, "proveedores.csv")
	require.NoError(t, os.WriteFile(products, []byte("id,sku,current_stock\np-1,A,4\n"), 0o600))
	require.NoError(t, os.WriteFile(suppliers, []byte("id,code,name\nsup-1,S1,Uno\n"), 0o600))

	cat, err := catalog.LoadFiles(products, suppliers, "utf-8")
	require.NoError(t, err)
	assert.Len(t, cat.Products, 1)
	assert.Len(t, cat.Suppliers, 1)

	_, err = catalog.LoadFiles(filepath.Join(dir, "no-existe.csv"), "", "")
	assert.Error(t, err)

	empty, err := catalog.LoadFiles("", "", "")
	require.NoError(t, err)
	assert.Empty(t, empty.Products)
}
