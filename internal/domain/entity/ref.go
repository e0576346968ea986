package entity

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "github.com/YouSangSon/tour-service/internal/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ref는 다른 컬렉션 문서에 대한 참조입니다
// 저장 시에는 ObjectID만 기록되고 응답에는 확장된 문서(Doc)가 있으면 그것이 직렬화됩니다
type Ref[T any] struct {
	ID  primitive.ObjectID
	Doc *T
}

// NewRef는 ID로 참조를 생성합니다
func NewRef[T any](id primitive.ObjectID) Ref[T] {
	return Ref[T]{ID: id}
}

// IsZero는 참조가 비어 있는지 반환합니다
func (r Ref[T]) IsZero() bool {
	return r.ID.IsZero()
}

// MarshalBSONValue는 참조를 ObjectID로 저장합니다
func (r Ref[T]) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(r.ID)
}

// UnmarshalBSONValue는 저장된 ObjectID를 읽습니다
func (r *Ref[T]) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bson.TypeNull {
		*r = Ref[T]{}
		return nil
	}
	var id primitive.ObjectID
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&id); err != nil {
		return fmt.Errorf("failed to decode reference: %w", err)
	}
	*r = Ref[T]{ID: id}
	return nil
}

// MarshalJSON은 확장된 문서 또는 ID 문자열을 출력합니다
func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.Doc != nil {
		return json.Marshal(r.Doc)
	}
	if r.ID.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID.Hex())
}

// UnmarshalJSON은 ID 문자열 또는 {"_id": ...} 객체를 받습니다
func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Ref[T]{}
		return nil
	}

	var raw string
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			ID string `json:"_id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		raw = obj.ID
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, err := ParseID(raw)
	if err != nil {
		return err
	}
	*r = Ref[T]{ID: id}
	return nil
}

// ParseID는 hex 문자열을 ObjectID로 변환합니다
// 잘못된 값은 "Invalid _id : <value>." validation 에러입니다
func ParseID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperrors.Validation(fmt.Sprintf("Invalid _id : %s.", raw), "_id").WithCause(err)
	}
	return id, nil
}

// IDs는 참조 목록의 ID를 반환합니다
func IDs[T any](refs []Ref[T]) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(refs))
	for _, ref := range refs {
		if !ref.ID.IsZero() {
			ids = append(ids, ref.ID)
		}
	}
	return ids
}
