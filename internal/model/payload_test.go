package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

const fileTransferJSON = `[{
	"id": "f-1",
	"fileName": "report.xlsx",
	"fileContent": "UEsDBA==",
	"fileFormat": "xlsx",
	"recipient": "ops team",
	"sourceServerIP": "10.0.0.5",
	"sourceFilePath": "/srv/out/report.xlsx",
	"destinationServerIP": "10.0.1.9",
	"destinationFilePath": "/srv/in/report.xlsx"
}]`

const backupJSON = `[{
	"id": "b-1",
	"serverIP": "10.0.0.5",
	"sourcePath": "/var/lib/app",
	"schedule": "daily",
	"retentionDays": 30
}]`

const vdiJSON = `[{
	"id": "v-1",
	"username": "alice",
	"desktopPool": "dev-pool",
	"operatingSystem": "Windows 11",
	"cpuCores": 4,
	"memoryGB": 16,
	"accessDays": 90
}]`

func TestParsePayload(t *testing.T) {
	t.Run("File transfer", func(t *testing.T) {
		p, err := ParsePayload(RequestTypeFileTransfer, datatypes.JSON(fileTransferJSON))
		require.NoError(t, err)
		require.NoError(t, p.Validate())
		assert.Equal(t, RequestTypeFileTransfer, p.Type())

		files, ok := p.(FileTransferPayload)
		require.True(t, ok)
		require.Len(t, files, 1)
		assert.Equal(t, "report.xlsx", files[0].FileName)
		assert.Empty(t, files[0].LetterNumber)
	})

	t.Run("Backup", func(t *testing.T) {
		p, err := ParsePayload(RequestTypeBackup, datatypes.JSON(backupJSON))
		require.NoError(t, err)
		require.NoError(t, p.Validate())
		assert.Equal(t, RequestTypeBackup, p.Type())
	})

	t.Run("VDI", func(t *testing.T) {
		p, err := ParsePayload(RequestTypeVDI, datatypes.JSON(vdiJSON))
		require.NoError(t, err)
		require.NoError(t, p.Validate())
		assert.Equal(t, RequestTypeVDI, p.Type())
	})

	t.Run("Cross-type rows are rejected", func(t *testing.T) {
		_, err := ParsePayload(RequestTypeBackup, datatypes.JSON(fileTransferJSON))
		assert.Error(t, err)

		_, err = ParsePayload(RequestTypeVDI, datatypes.JSON(backupJSON))
		assert.Error(t, err)
	})

	t.Run("Unknown request type", func(t *testing.T) {
		_, err := ParsePayload(RequestType("PRINTER"), datatypes.JSON(`[]`))
		assert.Error(t, err)
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		_, err := ParsePayload(RequestTypeBackup, datatypes.JSON(`{not json`))
		assert.Error(t, err)
	})
}

func TestPayloadValidate(t *testing.T) {
	t.Run("Empty payloads are invalid", func(t *testing.T) {
		assert.Error(t, FileTransferPayload{}.Validate())
		assert.Error(t, BackupPayload{}.Validate())
		assert.Error(t, VDIAccessPayload{}.Validate())
	})

	t.Run("Missing file fields", func(t *testing.T) {
		p := FileTransferPayload{{ID: "f-1", FileName: "a.txt", FileFormat: "txt", Recipient: "x"}}
		assert.Error(t, p.Validate())
	})

	t.Run("Non-positive retention", func(t *testing.T) {
		p := BackupPayload{{ID: "b-1", ServerIP: "10.0.0.1", SourcePath: "/data", Schedule: "weekly", RetentionDays: 0}}
		assert.Error(t, p.Validate())
	})

	t.Run("Non-positive VDI sizing", func(t *testing.T) {
		p := VDIAccessPayload{{ID: "v-1", Username: "bob", DesktopPool: "p", OperatingSystem: "Linux", CPUCores: 2, MemoryGB: 8, AccessDays: 0}}
		assert.Error(t, p.Validate())
	})
}
