// Package rpc defines warden's gRPC wire surface.
//
// There is no protoc step: service descriptors, client stubs, and message
// types are written by hand, and payloads travel through a JSON codec
// registered under the "json" content-subtype. Values that are proto
// messages (emptypb.Empty) are encoded with protojson; plain Go structs use
// encoding/json. Client stubs force the codec on every call, and the server
// selects it from the request's content-type.
//
// Services and their endpoints:
//
//	/warden.Auth/Login      bootstrap endpoint, no credential required
//	/warden.Auth/Logout     bootstrap endpoint
//	/warden.API/Ping        main endpoint
//	/warden.API/GetUser     main endpoint
//	/warden.Jail/GetTOS     main endpoint, allowed while jailed
//	/warden.Jail/AcceptTOS  main endpoint, allowed while jailed
//	/warden.Jail/JailInfo   main endpoint, allowed while jailed
//
// Errors carry an errdetails.ErrorInfo whose Reason a client reads with
// ReasonOf.
package rpc
