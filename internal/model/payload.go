package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

// RequestPayload is the tagged union of type-specific detail rows. A request
// of type T only ever carries T's rows; ParsePayload enforces the tag so an
// invalid combination (e.g. a BACKUP request holding file rows) cannot be
// persisted.
type RequestPayload interface {
	Type() RequestType
	Validate() error
}

// FileTransferDetail describes one file to be moved between servers.
// LetterNumber is optional at creation and may be filled in exactly once
// later by the requester.
type FileTransferDetail struct {
	ID                  string `json:"id"`
	FileName            string `json:"fileName"`
	FileContent         string `json:"fileContent"`
	FileFormat          string `json:"fileFormat"`
	Recipient           string `json:"recipient"`
	LetterNumber        string `json:"letterNumber,omitempty"`
	FileFields          string `json:"fileFields,omitempty"`
	SourceServerIP      string `json:"sourceServerIP"`
	SourceFilePath      string `json:"sourceFilePath"`
	DestinationServerIP string `json:"destinationServerIP"`
	DestinationFilePath string `json:"destinationFilePath"`
}

// BackupDetail describes one backup job to be provisioned.
type BackupDetail struct {
	ID             string `json:"id"`
	ServerIP       string `json:"serverIP"`
	SourcePath     string `json:"sourcePath"`
	Schedule       string `json:"schedule"` // e.g. "daily", "weekly"
	RetentionDays  int    `json:"retentionDays"`
	SizeEstimateGB int    `json:"sizeEstimateGB,omitempty"`
}

// VDIAccessDetail describes one virtual desktop access grant.
type VDIAccessDetail struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	DesktopPool     string `json:"desktopPool"`
	OperatingSystem string `json:"operatingSystem"`
	CPUCores        int    `json:"cpuCores"`
	MemoryGB        int    `json:"memoryGB"`
	AccessDays      int    `json:"accessDays"`
	Justification   string `json:"justification,omitempty"`
}

type FileTransferPayload []FileTransferDetail

func (FileTransferPayload) Type() RequestType { return RequestTypeFileTransfer }

func (p FileTransferPayload) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("at least one file is required")
	}
	for i, f := range p {
		if f.ID == "" || f.FileName == "" || f.FileFormat == "" || f.Recipient == "" {
			return fmt.Errorf("file %d: id, fileName, fileFormat and recipient are required", i+1)
		}
		if f.SourceServerIP == "" || f.SourceFilePath == "" || f.DestinationServerIP == "" || f.DestinationFilePath == "" {
			return fmt.Errorf("file %d: source and destination server/path are required", i+1)
		}
	}
	return nil
}

type BackupPayload []BackupDetail

func (BackupPayload) Type() RequestType { return RequestTypeBackup }

func (p BackupPayload) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("at least one backup entry is required")
	}
	for i, b := range p {
		if b.ID == "" || b.ServerIP == "" || b.SourcePath == "" || b.Schedule == "" {
			return fmt.Errorf("backup %d: id, serverIP, sourcePath and schedule are required", i+1)
		}
		if b.RetentionDays <= 0 {
			return fmt.Errorf("backup %d: retentionDays must be positive", i+1)
		}
	}
	return nil
}

type VDIAccessPayload []VDIAccessDetail

func (VDIAccessPayload) Type() RequestType { return RequestTypeVDI }

func (p VDIAccessPayload) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("at least one VDI access entry is required")
	}
	for i, v := range p {
		if v.ID == "" || v.Username == "" || v.DesktopPool == "" || v.OperatingSystem == "" {
			return fmt.Errorf("vdi %d: id, username, desktopPool and operatingSystem are required", i+1)
		}
		if v.CPUCores <= 0 || v.MemoryGB <= 0 || v.AccessDays <= 0 {
			return fmt.Errorf("vdi %d: cpuCores, memoryGB and accessDays must be positive", i+1)
		}
	}
	return nil
}

// ParsePayload decodes raw jsonb into the payload type matching requestType.
// Unknown fields are rejected so rows of a different request type do not
// silently pass as the declared one.
func ParsePayload(requestType RequestType, raw datatypes.JSON) (RequestPayload, error) {
	decode := func(dst interface{}) error {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		return dec.Decode(dst)
	}

	switch requestType {
	case RequestTypeFileTransfer:
		var p FileTransferPayload
		if err := decode(&p); err != nil {
			return nil, fmt.Errorf("invalid file transfer payload: %w", err)
		}
		return p, nil
	case RequestTypeBackup:
		var p BackupPayload
		if err := decode(&p); err != nil {
			return nil, fmt.Errorf("invalid backup payload: %w", err)
		}
		return p, nil
	case RequestTypeVDI:
		var p VDIAccessPayload
		if err := decode(&p); err != nil {
			return nil, fmt.Errorf("invalid VDI payload: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown request type: %s", requestType)
	}
}
