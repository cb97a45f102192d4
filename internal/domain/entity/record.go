package entity

import "time"

// Record es implementado por toda entidad persistible en una colección.
// El proveedor activo asigna el ID si viene vacío y estampa los tiempos al escribir.
type Record interface {
	RecordID() string
	SetRecordID(id string)
	Touch(now time.Time)
}
