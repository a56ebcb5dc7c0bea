// Package elasticsearch exposes a search index as a connector tree:
//
//	indices                                   every index on the cluster
//	indices/{index}/types                     mapping types of an index
//	indices/{index}/types/{type}              documents of a type
//	indices/{index}/types/{type}/{id}         one document
//	indices/{index}/types/{type}/$actions/... insert, update, delete
//
// Documents are never listed during reflection. Record properties and action
// arguments are derived from the type mapping.
package elasticsearch
