package badger

import "fmt"

// Key layout for vector records
const vectorRecordPrefix = "vecrec"

// makeVectorKey generates a key for a vector record within a namespace.
// Format: prefix:namespace:id
func makeVectorKey(namespace, id string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", vectorRecordPrefix, namespace, id))
}

// makeNamespacePrefix generates the key prefix shared by every record in a
// namespace. Used for iteration and bulk deletes.
func makeNamespacePrefix(namespace string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", vectorRecordPrefix, namespace))
}
