/*
Package ports defines the driven ports (interfaces) of the Enlyst hosts.

These interfaces decouple the node and trigger from concrete infrastructure,
so a host can keep received events in process memory or share them through Redis.

# Key Interfaces

  - EventStore: persists webhook deliveries accepted by the trigger.
  - Locker: provides distributed locking so that only one replica enriches and
    waits on a given project at a time.
*/
package ports
