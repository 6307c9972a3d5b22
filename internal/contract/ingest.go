package contract

import "github.com/alexanderramin/parada/internal/app"

type IngestRequest = app.IngestRequest

type IngestResult = app.IngestResult

type SnapshotListRequest = app.SnapshotListRequest

type ExportRequest = app.ExportRequest

type ExportResult = app.ExportResult

type CriticalPathRequest = app.CriticalPathRequest

type CriticalPathResponse = app.CriticalPathResponse
